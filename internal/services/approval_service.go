package services

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"fixbay/internal/domain"
	applog "fixbay/internal/log"
	"fixbay/internal/repos"
)

// ApprovalService is the customer-facing half of price negotiation: accept or
// reject the standing proposal, and optionally cancel the booking after a
// rejection.
type ApprovalService struct {
	DB       *sqlx.DB
	Bookings *repos.BookingRepo
	Notices  *repos.NoticeRepo
	Notify   Notifier
	Realtime RealtimeEmitter
}

func NewApprovalService(db *sqlx.DB, bookings *repos.BookingRepo, notices *repos.NoticeRepo,
	notify Notifier, realtime RealtimeEmitter) *ApprovalService {
	return &ApprovalService{DB: db, Bookings: bookings, Notices: notices, Notify: notify, Realtime: realtime}
}

// loadOwnedNotice folds absence and ownership mismatch into NotFound.
func (s *ApprovalService) loadOwnedNotice(q sqlx.Queryer, noticeID, customerID string) (domain.PriceApprovalNotice, error) {
	n, err := s.Notices.Get(q, noticeID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && n.CustomerID != customerID) {
		return domain.PriceApprovalNotice{}, &domain.NotFoundError{Kind: "notice", ID: noticeID}
	}
	return n, err
}

func (s *ApprovalService) AcceptPrice(customer domain.Actor, noticeID string) (domain.ServiceBooking, error) {
	return s.resolve(customer, noticeID, domain.NoticeAccepted)
}

// RejectPrice records the customer's refusal. It does not cancel the booking;
// cancellation is a separate, explicit follow-up.
func (s *ApprovalService) RejectPrice(customer domain.Actor, noticeID string) (domain.ServiceBooking, error) {
	return s.resolve(customer, noticeID, domain.NoticeRejected)
}

func (s *ApprovalService) resolve(customer domain.Actor, noticeID, outcome string) (domain.ServiceBooking, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	n, err := s.loadOwnedNotice(tx, noticeID, customer.ID)
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	ok, err := s.Notices.Resolve(tx, noticeID, outcome)
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	if !ok {
		// Answered already, or a newer proposal superseded this one.
		return domain.ServiceBooking{}, &domain.AlreadyResolvedError{NoticeID: noticeID, Status: n.Status}
	}

	b, err := s.Bookings.Get(tx, n.BookingID)
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	accepted := outcome == domain.NoticeAccepted
	approval := domain.ApprovalRejected
	if accepted {
		approval = domain.ApprovalAccepted
	}
	if err := s.Bookings.UpdateApproval(tx, b.ID, approval, accepted); err != nil {
		return domain.ServiceBooking{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.ServiceBooking{}, err
	}
	b.ApprovalStatus = approval
	b.PriceApproved = accepted

	verb, event := "accepted", "price.accepted"
	if !accepted {
		verb, event = "rejected", "price.rejected"
	}
	s.Notify.Notify(customer.ID, "price_"+verb, "Price "+verb,
		"You "+verb+" the proposed price.", b.ID, map[string]any{"price": n.ProposedPrice})
	s.Realtime.Emit(ProviderRoom(b.ProviderID), event, map[string]any{
		"bookingId": b.ID, "noticeId": noticeID, "price": n.ProposedPrice,
	})
	applog.Audit(nil, "price."+verb, map[string]any{
		"booking_id": b.ID, "notice_id": noticeID, "actor": customer.ID, "role": customer.Role,
	})
	return b, nil
}

// CancelAfterRejection moves the booking to its terminal REJECTED status,
// recording the transition. Reachable from a rejected notice, or straight
// from a pending one (which it rejects on the way). Outstanding stock holds
// on linked products are left in place; returning parts is the sanctioned
// release path (open product question).
func (s *ApprovalService) CancelAfterRejection(customer domain.Actor, noticeID string) (domain.ServiceBooking, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	n, err := s.loadOwnedNotice(tx, noticeID, customer.ID)
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	switch n.Status {
	case domain.NoticePending:
		if _, err := s.Notices.Resolve(tx, noticeID, domain.NoticeRejected); err != nil {
			return domain.ServiceBooking{}, err
		}
	case domain.NoticeRejected:
		// proceed
	default:
		return domain.ServiceBooking{}, &domain.AlreadyResolvedError{NoticeID: noticeID, Status: n.Status}
	}

	b, err := s.Bookings.Get(tx, n.BookingID)
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	if domain.BookingTerminal(b.Status) {
		return domain.ServiceBooking{}, &domain.InvalidBookingStateError{BookingID: b.ID, Status: b.Status}
	}

	if err := s.Bookings.UpdateStatus(tx, b.ID, domain.BookingRejected); err != nil {
		return domain.ServiceBooking{}, err
	}
	if err := s.Bookings.UpdateApproval(tx, b.ID, domain.ApprovalRejected, false); err != nil {
		return domain.ServiceBooking{}, err
	}
	if err := s.Bookings.AppendStatusHistory(tx, b.ID, b.Status, domain.BookingRejected, customer); err != nil {
		return domain.ServiceBooking{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.ServiceBooking{}, err
	}

	prev := b.Status
	b.Status = domain.BookingRejected
	b.ApprovalStatus = domain.ApprovalRejected
	b.PriceApproved = false

	s.Notify.Notify(b.ProviderID, "booking_cancelled", "Booking cancelled",
		"The customer declined the proposed price and cancelled the booking.", b.ID, nil)
	s.Realtime.Emit(ProviderRoom(b.ProviderID), "booking.cancelled", map[string]any{
		"bookingId": b.ID, "from": prev,
	})
	applog.Audit(nil, "booking.cancel", map[string]any{
		"booking_id": b.ID, "notice_id": noticeID, "actor": customer.ID, "role": customer.Role,
	})
	return b, nil
}

// PendingNotices lists the customer's open proposals.
func (s *ApprovalService) PendingNotices(customerID string) ([]domain.PriceApprovalNotice, error) {
	return s.Notices.PendingForCustomer(customerID)
}
