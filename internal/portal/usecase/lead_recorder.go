package usecase

import (
	"context"
	"strings"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/eventbus"
	"consultancy-portal/internal/shared/logger"
)

// LeadRecorderInterface records a student's interest in an institution at most once.
type LeadRecorderInterface interface {
	RecordInterest(ctx context.Context, student model.Student, req InterestRequest) (Outcome, error)
}

// LeadRecorder checks for an existing lead and inserts one when none is found.
//
// The check and the insert are separate round-trips. Stores with a uniqueness
// constraint on (studentId, target) reject the losing insert with ErrConflict,
// which is reported as OutcomeExisting. Stores without one can record two leads
// for racing calls.
type LeadRecorder struct {
	store  repository.DocumentStore
	bus    eventbus.EventBusInterface
	logger logger.Logger
}

func NewLeadRecorder(store repository.DocumentStore, bus eventbus.EventBusInterface, log logger.Logger) *LeadRecorder {
	return &LeadRecorder{
		store:  store,
		bus:    bus,
		logger: log.WithComponent("lead-recorder"),
	}
}

func (r *LeadRecorder) RecordInterest(ctx context.Context, student model.Student, req InterestRequest) (Outcome, error) {
	if strings.TrimSpace(student.ID) == "" {
		return "", errors.NewAuthenticationError("student identity is required")
	}
	req.TargetID = strings.TrimSpace(req.TargetID)
	if err := validateStruct(req); err != nil {
		return "", err
	}
	target := model.TargetType(req.TargetType)
	log := r.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"student_id":  student.ID,
		"target_type": string(target),
		"target_id":   req.TargetID,
	})

	existing, err := r.store.Query(ctx, model.Query{
		Collection: model.ListingLeads,
		Filters: []model.Filter{
			model.Where(model.LeadStudentID, student.ID),
			model.Where(target.IDField(), req.TargetID),
		},
		Limit: 1,
	})
	if err != nil {
		log.Errorf("lead lookup failed: %v", err)
		return "", errors.NewTransientError("failed to record interest").WithCause(err)
	}
	if len(existing) > 0 {
		log.Debug("lead already recorded")
		return OutcomeExisting, nil
	}

	phone := req.Phone
	if phone == "" {
		phone = student.Phone
	}
	lead := model.Lead{
		StudentID:      student.ID,
		StudentName:    student.Name,
		StudentEmail:   student.Email,
		StudentPhone:   phone,
		StudentPicture: student.Picture,
		TargetType:     target,
		TargetID:       req.TargetID,
		TargetName:     req.TargetName,
		Location:       req.Location,
		LastCourse:     req.Course,
		Percentage:     req.Percentage,
	}

	id, err := r.store.Insert(ctx, model.ListingLeads, lead.Fields())
	if err != nil {
		if errors.IsConflict(err) {
			log.Info("concurrent lead insert rejected by unique index")
			return OutcomeExisting, nil
		}
		log.Errorf("lead insert failed: %v", err)
		return "", errors.NewTransientError("failed to record interest").WithCause(err)
	}

	lead.ID = id
	if r.bus != nil {
		r.bus.PublishAndForget(context.WithoutCancel(ctx),
			eventbus.NewEvent(eventbus.EventTypeLeadRecorded, lead, "lead-recorder"))
	}
	log.WithFields(map[string]interface{}{"lead_id": id}).Info("lead recorded")
	return OutcomeCreated, nil
}
