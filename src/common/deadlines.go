package common

import (
	"fmt"
	"time"

	"tourbook/src/config"
	"tourbook/src/types"
)

// TourStart resolves a booking's scheduled start. A missing or empty
// preferredTime always falls back to 00:00 local time on the booking date.
func TourStart(bookingDate string, preferredTime *string) (time.Time, error) {
	date, err := time.ParseInLocation(types.DATE_PARSE_FORMAT, bookingDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid booking date %q: %w", bookingDate, err)
	}
	if preferredTime == nil || *preferredTime == "" {
		return date, nil
	}
	tod, err := time.ParseInLocation(types.TIME_PARSE_FORMAT, *preferredTime, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid preferred time %q: %w", *preferredTime, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, time.Local), nil
}

// PaymentDeadline is the latest moment a booking may still be paid:
// payment secures a slot that is about to begin, so the deadline is the
// tour start itself.
func PaymentDeadline(bookingDate string, preferredTime *string) (time.Time, error) {
	return TourStart(bookingDate, preferredTime)
}

// CompletionDeadline is the moment a paid booking auto-completes without
// explicit tourist confirmation.
func CompletionDeadline(bookingDate string, preferredTime *string) (time.Time, error) {
	start, err := TourStart(bookingDate, preferredTime)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(config.CompletionWindow()), nil
}

type PaymentTiming struct {
	CanPay bool
	Reason string
}

// ValidatePaymentTiming decides whether payment may still be captured at
// the given instant. now is injected so the decision is deterministic.
func ValidatePaymentTiming(bookingDate string, preferredTime *string, now time.Time) PaymentTiming {
	deadline, err := PaymentDeadline(bookingDate, preferredTime)
	if err != nil {
		return PaymentTiming{CanPay: false, Reason: err.Error()}
	}
	if now.After(deadline) {
		return PaymentTiming{CanPay: false, Reason: fmt.Sprintf("Payment deadline has passed (was due by %s)", deadline.Format("2006-01-02 15:04"))}
	}
	return PaymentTiming{CanPay: true}
}

// ShouldAutoComplete reports whether an unattended sweep must drive the
// booking to completed: only paid bookings past their completion deadline.
func ShouldAutoComplete(bookingDate string, status types.BookingStatus, preferredTime *string, now time.Time) bool {
	if status != types.BOOKING_PAID {
		return false
	}
	deadline, err := CompletionDeadline(bookingDate, preferredTime)
	if err != nil {
		return false
	}
	return !now.Before(deadline)
}
