package domain

import "fmt"

// Business-rule failures are plain return values with enough data attached
// for the caller to render a message without a second round-trip.

// NotFoundError covers a missing entity and an ownership mismatch alike, so
// callers cannot probe for existence of other users' records.
type NotFoundError struct {
	Kind string // "booking" | "product" | "linked product" | "notice"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Available: %d, requested: %d", e.Available, e.Requested)
}

type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// AlreadyResolvedError: a price-approval action targeted a notice that is no
// longer pending (answered earlier, or superseded by a newer proposal).
type AlreadyResolvedError struct {
	NoticeID string
	Status   string
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("notice %s already resolved (%s)", e.NoticeID, e.Status)
}

type InvalidBookingStateError struct {
	BookingID string
	Status    string
}

func (e *InvalidBookingStateError) Error() string {
	return fmt.Sprintf("booking %s is %s and cannot be cancelled", e.BookingID, e.Status)
}
