package usecase

import (
	"context"
	"testing"
	"time"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProfile_ResolveCreatesOnFirstUse(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	uc := NewProfileUsecase(store, nil, &MockLogger{})

	_, err := uc.Get(ctx, studentA.ID)
	assert.True(t, errors.IsNotFound(err))

	s, err := uc.Resolve(ctx, studentA)
	require.NoError(t, err)
	assert.Equal(t, studentA.ID, s.ID)
	assert.Equal(t, studentA.Name, s.Name)
	assert.Equal(t, studentA.Email, s.Email)

	// a second resolve keeps edits made in between
	_, err = uc.Update(ctx, studentA.ID, model.ProfileUpdate{Name: strPtr("Asha K")})
	require.NoError(t, err)
	s, err = uc.Resolve(ctx, studentA)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", s.Name)
}

func TestProfile_UpdateMergesOnlySetFields(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	uc := NewProfileUsecase(store, nil, &MockLogger{})
	_, err := uc.Resolve(ctx, studentA)
	require.NoError(t, err)

	s, err := uc.Update(ctx, studentA.ID, model.ProfileUpdate{Location: strPtr("Nagpur"), Percentage: strPtr("91")})
	require.NoError(t, err)
	assert.Equal(t, "Nagpur", s.Location)
	assert.Equal(t, "91", s.Percentage)
	assert.Equal(t, studentA.Email, s.Email)

	rec, err := store.Get(ctx, model.ListingStudents, studentA.ID)
	require.NoError(t, err)
	assert.False(t, rec.Time(model.FieldUpdatedAt).IsZero())
	assert.False(t, rec.CreatedAt().IsZero())
}

func TestProfile_Validation(t *testing.T) {
	uc := NewProfileUsecase(newMemoryStore(), nil, &MockLogger{})
	ctx := context.Background()

	_, err := uc.Update(ctx, "", model.ProfileUpdate{Name: strPtr("x")})
	assert.True(t, errors.IsAuthentication(err))

	_, err = uc.Update(ctx, studentA.ID, model.ProfileUpdate{})
	assert.True(t, errors.IsValidation(err))

	_, err = uc.Update(ctx, studentA.ID, model.ProfileUpdate{Picture: strPtr("not a url")})
	assert.True(t, errors.IsValidation(err))
}

func TestProfile_SubscribeReceivesOwnUpdatesOnly(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.NewEventBus(&MockLogger{})
	uc := NewProfileUsecase(newMemoryStore(), bus, &MockLogger{})

	got := make(chan model.Student, 4)
	cancel := uc.Subscribe(studentA.ID, func(s model.Student) { got <- s })

	_, err := uc.Update(ctx, "someone-else", model.ProfileUpdate{Name: strPtr("Other")})
	require.NoError(t, err)
	_, err = uc.Update(ctx, studentA.ID, model.ProfileUpdate{Phone: strPtr("+1 555")})
	require.NoError(t, err)

	select {
	case s := <-got:
		assert.Equal(t, studentA.ID, s.ID)
		assert.Equal(t, "+1 555", s.Phone)
	case <-time.After(time.Second):
		t.Fatal("no profile update delivered")
	}
	assert.Empty(t, got)

	cancel()
	assert.Equal(t, 0, bus.GetSubscriberCount(eventbus.EventTypeProfileUpdated))
	_, err = uc.Update(ctx, studentA.ID, model.ProfileUpdate{Phone: strPtr("+1 556")})
	require.NoError(t, err)
	assert.Empty(t, got)
}
