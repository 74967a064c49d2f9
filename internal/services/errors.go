package services

import (
	"errors"
	"fmt"
)

// Error is a business-rule failure with a stable code. Sentinels below are
// compared with errors.Is; wrap them with invalidf to add detail.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidInput       = &Error{Code: "INVALID_INPUT", Message: "invalid input"}
	ErrInvalidTime        = &Error{Code: "INVALID_TIME", Message: "start time must be before end time"}
	ErrNoMembership       = &Error{Code: "NO_MEMBERSHIP", Message: "no usable membership"}
	ErrClassNotFound      = &Error{Code: "CLASS_NOT_FOUND", Message: "class not found"}
	ErrClassFull          = &Error{Code: "CLASS_FULL", Message: "class is full"}
	ErrAlreadyBooked      = &Error{Code: "ALREADY_BOOKED", Message: "class already booked"}
	ErrBookingNotFound    = &Error{Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
	ErrCancelTooLate      = &Error{Code: "CANCEL_TOO_LATE", Message: "booking can no longer be cancelled"}
	ErrInvalidQR          = &Error{Code: "INVALID_QR", Message: "invalid or expired qr code"}
	ErrTrainerBusy        = &Error{Code: "TRAINER_BUSY", Message: "trainer already has a class in this slot"}
	ErrCapacityTooSmall   = &Error{Code: "CAPACITY_TOO_SMALL", Message: "capacity is below current bookings"}
	ErrClassHasBookings   = &Error{Code: "CLASS_HAS_BOOKINGS", Message: "class has bookings"}
	ErrInvalidStatus      = &Error{Code: "INVALID_STATUS", Message: "membership status does not allow this action"}
	ErrMembershipExpired  = &Error{Code: "MEMBERSHIP_EXPIRED", Message: "membership has expired"}
	ErrMembershipNotFound = &Error{Code: "MEMBERSHIP_NOT_FOUND", Message: "membership not found"}
	ErrPlanNotFound       = &Error{Code: "PLAN_NOT_FOUND", Message: "plan not found"}
	ErrPlanInactive       = &Error{Code: "PLAN_INACTIVE", Message: "plan is not active"}
	ErrForbidden          = &Error{Code: "FORBIDDEN", Message: "forbidden"}
)

type detailedError struct {
	base   *Error
	detail string
}

func (e *detailedError) Error() string {
	return e.base.Message + ": " + e.detail
}

func (e *detailedError) Unwrap() error {
	return e.base
}

func invalidf(format string, args ...any) error {
	return &detailedError{base: ErrInvalidInput, detail: fmt.Sprintf(format, args...)}
}

// Code returns the business code carried by err, or "" for infrastructure
// failures.
func Code(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
