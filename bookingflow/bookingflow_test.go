package bookingflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cafe-api/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.BookingStatus
		to      models.BookingStatus
		actor   string
		allowed bool
	}{
		{"staff confirms new", models.BookingNew, models.BookingConfirmed, ActorStaff, true},
		{"staff cancels new", models.BookingNew, models.BookingCancelled, ActorStaff, true},
		{"staff completes confirmed", models.BookingConfirmed, models.BookingCompleted, ActorStaff, true},
		{"staff cancels confirmed", models.BookingConfirmed, models.BookingCancelled, ActorStaff, true},
		{"owner cancels new", models.BookingNew, models.BookingCancelled, ActorOwner, true},
		{"owner cannot confirm", models.BookingNew, models.BookingConfirmed, ActorOwner, false},
		{"owner cannot cancel confirmed", models.BookingConfirmed, models.BookingCancelled, ActorOwner, false},
		{"cancelled is terminal", models.BookingCancelled, models.BookingNew, ActorStaff, false},
		{"completed is terminal", models.BookingCompleted, models.BookingCancelled, ActorStaff, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.actor)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.BookingStatus{models.BookingConfirmed, models.BookingCancelled, models.BookingCompleted},
		ValidTransitionsFrom(models.BookingNew))
	assert.Empty(t, ValidTransitionsFrom(models.BookingCancelled))
	assert.Empty(t, ValidTransitionsFrom(models.BookingCompleted))
}
