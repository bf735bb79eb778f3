package bookingflow

import (
	"errors"

	"cafe-api/models"
)

// Actor identifies who is attempting a status change
const (
	ActorStaff = "staff"
	ActorOwner = "owner"
)

// Transition defines a valid status change and who can perform it
type Transition struct {
	From  models.BookingStatus
	To    models.BookingStatus
	Actor string
}

// validTransitions is the authoritative booking lifecycle definition.
// Status changes are staff-only except that a booking's owner may cancel
// their own pending booking.
var validTransitions = []Transition{
	{From: models.BookingNew, To: models.BookingConfirmed, Actor: ActorStaff},
	{From: models.BookingNew, To: models.BookingCancelled, Actor: ActorStaff},
	{From: models.BookingNew, To: models.BookingCancelled, Actor: ActorOwner},
	{From: models.BookingNew, To: models.BookingCompleted, Actor: ActorStaff},
	{From: models.BookingConfirmed, To: models.BookingCompleted, Actor: ActorStaff},
	{From: models.BookingConfirmed, To: models.BookingCancelled, Actor: ActorStaff},
}

type transitionKey struct {
	From  models.BookingStatus
	To    models.BookingStatus
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all statuses reachable from the given one.
func ValidTransitionsFrom(status models.BookingStatus) []models.BookingStatus {
	var nexts []models.BookingStatus
	seen := map[models.BookingStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks whether the actor may move a booking between the
// two statuses.
func CanTransition(from, to models.BookingStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for " + actor + ". Valid transitions from " +
			string(from) + ": " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.BookingStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal status)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}
