package services

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"fixbay/internal/domain"
	applog "fixbay/internal/log"
	"fixbay/internal/repos"
)

// PartsService orchestrates attaching catalog products to a service booking:
// search, link/unlink with stock reservation, and the per-line allocation
// lifecycle. The product-ledger write and the booking write always share one
// transaction, so a crash cannot leave stock held with no line item (or the
// reverse).
type PartsService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Bookings *repos.BookingRepo
	Notices  *repos.NoticeRepo
	Ledger   *LedgerService
	Notify   Notifier
	Realtime RealtimeEmitter
}

func NewPartsService(db *sqlx.DB, products *repos.ProductRepo, bookings *repos.BookingRepo,
	notices *repos.NoticeRepo, ledger *LedgerService, notify Notifier, realtime RealtimeEmitter) *PartsService {
	return &PartsService{
		DB: db, Products: products, Bookings: bookings, Notices: notices,
		Ledger: ledger, Notify: notify, Realtime: realtime,
	}
}

// Search returns approved catalog products matching the query, each annotated
// with computed available stock. Read-only.
func (s *PartsService) Search(q, category, subcategory, compat string, limit int) ([]domain.ProductSummary, error) {
	return s.Products.Search(q, category, subcategory, compat, limit)
}

// loadOwnedBooking fetches a booking and folds an ownership mismatch into
// NotFound so callers cannot probe for other providers' bookings.
func (s *PartsService) loadOwnedBooking(q sqlx.Queryer, bookingID, providerID string) (domain.ServiceBooking, error) {
	b, err := s.Bookings.Get(q, bookingID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && b.ProviderID != providerID) {
		return domain.ServiceBooking{}, &domain.NotFoundError{Kind: "booking", ID: bookingID}
	}
	return b, err
}

// LinkProduct attaches (or re-quantifies) a product on a booking, reserving
// stock for the delta only, then recomputes costs, appends the cost-history
// entry and raises a fresh price proposal to the customer.
func (s *PartsService) LinkProduct(provider domain.Actor, bookingID, productID string, qty int, installation bool) (domain.ServiceBooking, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	b, err := s.loadOwnedBooking(tx, bookingID, provider.ID)
	if err != nil {
		return domain.ServiceBooking{}, err
	}

	p, err := s.Products.Get(tx, productID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && p.Status != "APPROVED") {
		return domain.ServiceBooking{}, &domain.NotFoundError{Kind: "product", ID: productID}
	}
	if err != nil {
		return domain.ServiceBooking{}, err
	}

	existing, err := s.Bookings.LinkedProduct(tx, bookingID, productID)
	switch {
	case err == nil:
		// Re-link is a quantity update: reserve or release the delta only.
		// Terminal lines keep no hold, so a delta here would corrupt the ledger.
		if !(existing.Allocation == domain.AllocationReserved || existing.Allocation == domain.AllocationAllocated) {
			return domain.ServiceBooking{}, &domain.InvalidTransitionError{From: existing.Allocation, To: domain.AllocationReserved}
		}
		delta := qty - existing.Qty
		if delta > 0 {
			if err := s.Ledger.Reserve(tx, productID, delta); err != nil {
				return domain.ServiceBooking{}, err
			}
		} else if delta < 0 {
			if err := s.Ledger.Release(tx, productID, -delta); err != nil {
				return domain.ServiceBooking{}, err
			}
		}
		total := existing.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		if err := s.Bookings.UpdateLinkedQty(tx, bookingID, productID, qty, total, installation); err != nil {
			return domain.ServiceBooking{}, err
		}
	case errors.Is(err, sql.ErrNoRows):
		if err := s.Ledger.Reserve(tx, productID, qty); err != nil {
			return domain.ServiceBooking{}, err
		}
		lp := domain.LinkedProduct{
			BookingID:    bookingID,
			ProductID:    productID,
			ProductName:  p.Name, // snapshot at link time
			Qty:          qty,
			UnitPrice:    p.Price, // snapshot at link time
			TotalPrice:   p.Price.Mul(decimal.NewFromInt(int64(qty))),
			Installation: installation,
			Allocation:   domain.AllocationReserved,
		}
		if err := s.Bookings.InsertLinked(tx, lp); err != nil {
			return domain.ServiceBooking{}, err
		}
	default:
		return domain.ServiceBooking{}, err
	}

	updated, err := s.recomputeCosts(tx, b, provider, true)
	if err != nil {
		return domain.ServiceBooking{}, err
	}

	if _, err := s.Notices.Create(tx, bookingID, b.CustomerID, updated.TotalCost, b.TotalCost); err != nil {
		return domain.ServiceBooking{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.ServiceBooking{}, err
	}

	// Best-effort signaling only past this point; the commit is the truth.
	s.Notify.Notify(b.CustomerID, "price_approval", "Updated price needs your approval",
		"The proposed parts changed the price of your booking.", bookingID, map[string]any{
			"proposedPrice": updated.TotalCost,
			"previousPrice": b.TotalCost,
		})
	s.Realtime.Emit(ProviderRoom(b.ProviderID), "parts.linked", map[string]any{
		"bookingId": bookingID, "productId": productID, "quantity": qty,
	})
	applog.Audit(nil, "parts.link", map[string]any{
		"booking_id": bookingID, "product_id": productID, "qty": qty, "actor": provider.ID, "role": provider.Role,
	})
	return updated, nil
}

// UnlinkProduct removes a line, releasing its full hold, and recomputes
// costs. It intentionally does not raise a new price proposal: removing a
// part lowers the price without re-confirmation (open product question).
// The approval flags stay as they were; any pending proposal for the old
// total is superseded rather than left dangling.
func (s *PartsService) UnlinkProduct(provider domain.Actor, bookingID, productID string) (domain.ServiceBooking, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	b, err := s.loadOwnedBooking(tx, bookingID, provider.ID)
	if err != nil {
		return domain.ServiceBooking{}, err
	}

	lp, err := s.Bookings.LinkedProduct(tx, bookingID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ServiceBooking{}, &domain.NotFoundError{Kind: "linked product", ID: productID}
	}
	if err != nil {
		return domain.ServiceBooking{}, err
	}

	// Only an outstanding hold goes back; installed or returned lines have
	// already settled with the ledger.
	if lp.Allocation == domain.AllocationReserved || lp.Allocation == domain.AllocationAllocated {
		if err := s.Ledger.Release(tx, productID, lp.Qty); err != nil {
			return domain.ServiceBooking{}, err
		}
	}
	if err := s.Bookings.DeleteLinked(tx, bookingID, productID); err != nil {
		return domain.ServiceBooking{}, err
	}

	updated, err := s.recomputeCosts(tx, b, provider, false)
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	// Any proposal still waiting on the old total no longer matches reality.
	if err := s.Notices.SupersedePending(tx, bookingID); err != nil {
		return domain.ServiceBooking{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.ServiceBooking{}, err
	}

	applog.Audit(nil, "parts.unlink", map[string]any{
		"booking_id": bookingID, "product_id": productID, "actor": provider.ID, "role": provider.Role,
	})
	return updated, nil
}

// recomputeCosts derives productCost from the surviving lines and shifts
// totalCost by the difference, preserving whatever labor cost the prior total
// carried. Appends the cost-history entry; resetApproval flips the booking
// back to pending when the change needs a fresh customer decision.
func (s *PartsService) recomputeCosts(tx *sqlx.Tx, b domain.ServiceBooking, by domain.Actor, resetApproval bool) (domain.ServiceBooking, error) {
	lines, err := s.Bookings.LinkedProducts(tx, b.ID)
	if err != nil {
		return domain.ServiceBooking{}, err
	}
	productCost := decimal.Zero
	for _, lp := range lines {
		productCost = productCost.Add(lp.TotalPrice)
	}
	totalCost := b.TotalCost.Sub(b.ProductCost).Add(productCost)

	approvalStatus, approved := b.ApprovalStatus, b.PriceApproved
	if resetApproval {
		approvalStatus, approved = domain.ApprovalPending, false
	}
	if err := s.Bookings.UpdateCosts(tx, b.ID, productCost, totalCost, approvalStatus, approved); err != nil {
		return domain.ServiceBooking{}, err
	}
	if err := s.Bookings.AppendCostHistory(tx, b.ID, b.TotalCost, totalCost, by); err != nil {
		return domain.ServiceBooking{}, err
	}

	b.ProductCost = productCost
	b.TotalCost = totalCost
	b.ApprovalStatus = approvalStatus
	b.PriceApproved = approved
	b.LinkedProducts = lines
	return b, nil
}

// UpdateAllocation drives the per-line state machine:
//
//	RESERVED -> ALLOCATED -> INSTALLED (terminal, consumes stock)
//	RESERVED | ALLOCATED -> RETURNED  (terminal, releases the hold)
func (s *PartsService) UpdateAllocation(provider domain.Actor, bookingID, productID, newStatus string) (domain.LinkedProduct, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.LinkedProduct{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.loadOwnedBooking(tx, bookingID, provider.ID); err != nil {
		return domain.LinkedProduct{}, err
	}
	lp, err := s.Bookings.LinkedProduct(tx, bookingID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LinkedProduct{}, &domain.NotFoundError{Kind: "linked product", ID: productID}
	}
	if err != nil {
		return domain.LinkedProduct{}, err
	}

	if err := domain.CheckAllocationMove(lp.Allocation, newStatus); err != nil {
		return domain.LinkedProduct{}, err
	}

	switch newStatus {
	case domain.AllocationInstalled:
		if err := s.Ledger.Consume(tx, productID, lp.Qty); err != nil {
			return domain.LinkedProduct{}, err
		}
	case domain.AllocationReturned:
		if err := s.Ledger.Release(tx, productID, lp.Qty); err != nil {
			return domain.LinkedProduct{}, err
		}
	}
	if err := s.Bookings.UpdateLinkedAllocation(tx, bookingID, productID, newStatus); err != nil {
		return domain.LinkedProduct{}, err
	}
	out, err := s.Bookings.LinkedProduct(tx, bookingID, productID)
	if err != nil {
		return domain.LinkedProduct{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.LinkedProduct{}, err
	}

	applog.Audit(nil, "parts.allocation", map[string]any{
		"booking_id": bookingID, "product_id": productID,
		"from": lp.Allocation, "to": newStatus, "actor": provider.ID, "role": provider.Role,
	})
	return out, nil
}

// LinkedProducts lists a booking's lines for its provider or its customer.
// Anyone else gets NotFound, same as a booking that does not exist.
func (s *PartsService) LinkedProducts(bookingID, requestingUserID string) ([]domain.LinkedProduct, error) {
	b, err := s.Bookings.Get(s.DB, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "booking", ID: bookingID}
	}
	if err != nil {
		return nil, err
	}
	if b.ProviderID != requestingUserID && b.CustomerID != requestingUserID {
		return nil, &domain.NotFoundError{Kind: "booking", ID: bookingID}
	}
	return s.Bookings.LinkedProducts(s.DB, bookingID)
}
