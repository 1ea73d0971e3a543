package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/eventbus"
	"consultancy-portal/internal/shared/logger"
)

const notifyTimeout = 10 * time.Second

// FormsUsecaseInterface accepts the public consultation and inquiry forms.
type FormsUsecaseInterface interface {
	SubmitConsultation(ctx context.Context, req ConsultationRequest) (string, error)
	SubmitInquiry(ctx context.Context, req InquiryRequest) (string, error)
}

type FormsUsecase struct {
	store    repository.DocumentStore
	settings SettingsUsecaseInterface
	notifier repository.Notifier
	bus      eventbus.EventBusInterface
	logger   logger.Logger
}

func NewFormsUsecase(store repository.DocumentStore, settings SettingsUsecaseInterface, notifier repository.Notifier, bus eventbus.EventBusInterface, log logger.Logger) *FormsUsecase {
	return &FormsUsecase{
		store:    store,
		settings: settings,
		notifier: notifier,
		bus:      bus,
		logger:   log.WithComponent("forms"),
	}
}

func (uc *FormsUsecase) SubmitConsultation(ctx context.Context, req ConsultationRequest) (string, error) {
	if err := validateStruct(req); err != nil {
		return "", err
	}
	id, err := uc.submit(ctx, model.ListingConsultations, req.fields())
	if err != nil {
		return "", err
	}
	body := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nDestination: %s\nCourse: %s\nPreferred time: %s\n\n%s",
		req.Name, req.Email, req.Phone, req.Destination, req.Course, req.PreferredAt, req.Message)
	uc.notify(ctx, "New consultation request from "+req.Name, body, req.Email)
	return id, nil
}

func (uc *FormsUsecase) SubmitInquiry(ctx context.Context, req InquiryRequest) (string, error) {
	if err := validateStruct(req); err != nil {
		return "", err
	}
	id, err := uc.submit(ctx, model.ListingInquiries, req.fields())
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n", req.Name, req.Email, req.Phone)
	if req.TargetName != "" {
		fmt.Fprintf(&b, "About: %s\n", req.TargetName)
	}
	fmt.Fprintf(&b, "\n%s", req.Message)
	uc.notify(ctx, "Inquiry: "+req.Subject, b.String(), req.Email)
	return id, nil
}

func (uc *FormsUsecase) submit(ctx context.Context, listing string, fields map[string]interface{}) (string, error) {
	fields[model.FieldRead] = false
	fields[model.FieldCreatedAt] = model.ServerTimestamp

	id, err := uc.store.Insert(ctx, listing, fields)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("insert %s failed: %v", listing, err)
		return "", errors.NewTransientError("failed to submit form").WithCause(err)
	}
	if uc.bus != nil {
		uc.bus.PublishAndForget(context.WithoutCancel(ctx), eventbus.NewEvent(
			eventbus.EventTypeRecordCreated, model.Mutation{Kind: model.MutationCreated, Listing: listing, ID: id}, "forms"))
	}
	return id, nil
}

// notify emails the administrator when SMTP is configured. Failures are logged only.
func (uc *FormsUsecase) notify(ctx context.Context, subject, body, replyTo string) {
	if uc.notifier == nil || uc.settings == nil {
		return
	}
	log := uc.logger.WithContext(ctx)
	settings, err := uc.settings.Get(ctx)
	if err != nil {
		log.Warnf("skip notification, settings unavailable: %v", err)
		return
	}
	if !settings.Email.Configured() {
		log.Debug("email delivery not configured")
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := uc.notifier.Notify(nctx, settings.Email, subject, body, replyTo); err != nil {
		log.Warnf("admin notification failed: %v", err)
	}
}
