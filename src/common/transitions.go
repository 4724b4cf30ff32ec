package common

import (
	"time"

	"tourbook/src/models"
	"tourbook/src/types"
)

type edge struct {
	from, to types.BookingStatus
}

// transitionRoles is the whole legal-transition set, kept as data so every
// edge is enumerable and testable on its own. A role listed on an edge may
// drive it only for a booking it owns (tourist must match tourist_id, guide
// must match guide_id); the system role belongs to the unattended sweep.
var transitionRoles = map[edge][]types.Role{
	{types.BOOKING_REQUESTED, types.BOOKING_ACCEPTED}: {types.ROLE_GUIDE},
	{types.BOOKING_REQUESTED, types.BOOKING_DECLINED}: {types.ROLE_GUIDE},
	{types.BOOKING_REQUESTED, types.BOOKING_CANCELED}: {types.ROLE_TOURIST},
	{types.BOOKING_OFFERED, types.BOOKING_ACCEPTED}:   {types.ROLE_TOURIST},
	{types.BOOKING_OFFERED, types.BOOKING_DECLINED}:   {types.ROLE_GUIDE, types.ROLE_TOURIST},
	{types.BOOKING_OFFERED, types.BOOKING_CANCELED}:   {types.ROLE_GUIDE, types.ROLE_TOURIST},
	{types.BOOKING_ACCEPTED, types.BOOKING_PAID}:      {types.ROLE_TOURIST},
	{types.BOOKING_ACCEPTED, types.BOOKING_CANCELED}:  {types.ROLE_GUIDE, types.ROLE_TOURIST},
	{types.BOOKING_PAID, types.BOOKING_COMPLETED}:     {types.ROLE_TOURIST, types.ROLE_SYSTEM},
}

func roleAllowed(roles []types.Role, role types.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CheckTransition decides whether actor may move booking to target at the
// given instant. It fails fast, before any remote call: authentication,
// then party membership, then the edge table, then payment timing.
func CheckTransition(actor types.Actor, booking *models.Booking, target types.BookingStatus, now time.Time) error {
	if !actor.Authenticated() {
		return NewError(KindUnauthenticated, "you must be signed in to update a booking")
	}
	if actor.Role != types.ROLE_SYSTEM {
		if !booking.OwnedBy(actor.ID) {
			if booking.Status == types.BOOKING_OFFERED && target == types.BOOKING_ACCEPTED && actor.Role == types.ROLE_TOURIST {
				return NewError(KindPermissionDenied, "offers can only be accepted by the addressed tourist")
			}
			return NewError(KindPermissionDenied, "you are not a party on this booking")
		}
		// The actor must own the side its role claims; a guide acting
		// through a tourist id (or vice versa) is a denial, not a bad edge.
		switch actor.Role {
		case types.ROLE_TOURIST:
			if actor.ID != booking.TouristID {
				return NewError(KindPermissionDenied, "only the tourist on this booking may do that")
			}
		case types.ROLE_GUIDE:
			if actor.ID != booking.GuideID {
				return NewError(KindPermissionDenied, "only the guide on this booking may do that")
			}
		default:
			return NewError(KindPermissionDenied, "unknown role %q", actor.Role)
		}
	}

	roles, ok := transitionRoles[edge{booking.Status, target}]
	if !ok {
		return invalidEdge(booking.Status, target)
	}
	if !roleAllowed(roles, actor.Role) {
		return NewError(KindInvalidTransition, "a %s cannot change a %s booking to %s", actor.Role, booking.Status, target)
	}

	if target == types.BOOKING_PAID {
		timing := ValidatePaymentTiming(booking.BookingDate, booking.PreferredTime, now)
		if !timing.CanPay {
			return NewError(KindInvalidTransition, "%s", timing.Reason)
		}
	}
	return nil
}

func invalidEdge(from, to types.BookingStatus) error {
	switch {
	case to == types.BOOKING_COMPLETED:
		return NewError(KindInvalidTransition, "Only paid bookings can be marked as completed (currently %s)", from)
	case from == types.BOOKING_PAID && to == types.BOOKING_CANCELED:
		return NewError(KindInvalidTransition, "paid bookings cannot be cancelled")
	case from.Terminal():
		return NewError(KindInvalidTransition, "booking is already %s", from)
	default:
		return NewError(KindInvalidTransition, "a %s booking cannot change to %s", from, to)
	}
}
