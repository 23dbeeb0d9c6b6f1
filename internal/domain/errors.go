package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict: record already exists")
	ErrInvalidName        = errors.New("name must not be empty")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrInvalidSubject     = errors.New("email subject must not be empty")
	ErrInvalidSchedule    = errors.New("schedule is not a valid cron expression")
	ErrInvalidPayload     = errors.New("webhook payload is missing item data")
	ErrAlreadyCancelled   = errors.New("notification is already cancelled")
	ErrNotCancellable     = errors.New("notification cannot be cancelled in its current status")
	ErrQueueFull          = errors.New("queue is at capacity, try again later")
	ErrSubscriptionExists = errors.New("user is already subscribed to this check")
)
