package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"fixbay/internal/domain"
)

type BookingRepo struct{ db *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `
  id, customer_id, provider_id, service_type, COALESCE(description,'') AS description,
  COALESCE(scheduled_at,'') AS scheduled_at, status, labor_cost, product_cost,
  total_cost, approval_status, price_approved, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *BookingRepo) Get(q sqlx.Queryer, id string) (domain.ServiceBooking, error) {
	var b domain.ServiceBooking
	err := sqlx.Get(q, &b, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	return b, err
}

const linkedCols = `
  booking_id, product_id, product_name, qty, unit_price, total_price,
  installation, allocation, reserved_at,
  COALESCE(allocated_at,'') AS allocated_at, COALESCE(installed_at,'') AS installed_at`

func (r *BookingRepo) LinkedProducts(q sqlx.Queryer, bookingID string) ([]domain.LinkedProduct, error) {
	out := []domain.LinkedProduct{}
	err := sqlx.Select(q, &out, `
	  SELECT `+linkedCols+` FROM linked_products
	  WHERE booking_id = ? ORDER BY reserved_at, product_id`, bookingID)
	return out, err
}

func (r *BookingRepo) LinkedProduct(q sqlx.Queryer, bookingID, productID string) (domain.LinkedProduct, error) {
	var lp domain.LinkedProduct
	err := sqlx.Get(q, &lp, `
	  SELECT `+linkedCols+` FROM linked_products
	  WHERE booking_id = ? AND product_id = ?`, bookingID, productID)
	return lp, err
}

func (r *BookingRepo) InsertLinked(ext sqlx.Ext, lp domain.LinkedProduct) error {
	_, err := ext.Exec(`
	  INSERT INTO linked_products
	    (booking_id, product_id, product_name, qty, unit_price, total_price, installation, allocation, reserved_at)
	  VALUES (?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, lp.BookingID, lp.ProductID, lp.ProductName, lp.Qty, lp.UnitPrice, lp.TotalPrice, lp.Installation, lp.Allocation)
	return err
}

// UpdateLinkedQty rewrites a line in place on re-link; the unit price snapshot
// taken at first link is kept.
func (r *BookingRepo) UpdateLinkedQty(ext sqlx.Ext, bookingID, productID string, qty int, totalPrice decimal.Decimal, installation bool) error {
	_, err := ext.Exec(`
	  UPDATE linked_products SET qty = ?, total_price = ?, installation = ?
	  WHERE booking_id = ? AND product_id = ?
	`, qty, totalPrice, installation, bookingID, productID)
	return err
}

func (r *BookingRepo) DeleteLinked(ext sqlx.Ext, bookingID, productID string) error {
	_, err := ext.Exec(`
	  DELETE FROM linked_products WHERE booking_id = ? AND product_id = ?
	`, bookingID, productID)
	return err
}

func (r *BookingRepo) UpdateLinkedAllocation(ext sqlx.Ext, bookingID, productID, allocation string) error {
	var stampCol string
	switch allocation {
	case domain.AllocationAllocated:
		stampCol = `, allocated_at = CURRENT_TIMESTAMP`
	case domain.AllocationInstalled:
		stampCol = `, installed_at = CURRENT_TIMESTAMP`
	}
	_, err := ext.Exec(`
	  UPDATE linked_products SET allocation = ?`+stampCol+`
	  WHERE booking_id = ? AND product_id = ?
	`, allocation, bookingID, productID)
	return err
}

// UpdateCosts writes the recomputed totals and the approval flags in one
// statement, so the aggregate is never visible half-updated.
func (r *BookingRepo) UpdateCosts(ext sqlx.Ext, bookingID string, productCost, totalCost decimal.Decimal, approvalStatus string, approved bool) error {
	_, err := ext.Exec(`
	  UPDATE bookings
	  SET product_cost = ?, total_cost = ?, approval_status = ?, price_approved = ?,
	      updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, productCost, totalCost, approvalStatus, approved, bookingID)
	return err
}

func (r *BookingRepo) UpdateApproval(ext sqlx.Ext, bookingID, approvalStatus string, approved bool) error {
	_, err := ext.Exec(`
	  UPDATE bookings SET approval_status = ?, price_approved = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, approvalStatus, approved, bookingID)
	return err
}

func (r *BookingRepo) UpdateStatus(ext sqlx.Ext, bookingID, status string) error {
	_, err := ext.Exec(`
	  UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, bookingID)
	return err
}

// History appends. INSERT is the only statement either table ever sees; the
// append-only contract of the audit trail rests on that.

func (r *BookingRepo) AppendCostHistory(ext sqlx.Ext, bookingID string, from, to decimal.Decimal, by domain.Actor) error {
	_, err := ext.Exec(`
	  INSERT INTO cost_history(id, booking_id, from_total, to_total, changed_at, actor_id, actor_role)
	  VALUES (?,?,?,?,CURRENT_TIMESTAMP,?,?)
	`, uuid.NewString(), bookingID, from, to, by.ID, by.Role)
	return err
}

func (r *BookingRepo) AppendStatusHistory(ext sqlx.Ext, bookingID, from, to string, by domain.Actor) error {
	_, err := ext.Exec(`
	  INSERT INTO status_history(id, booking_id, from_status, to_status, changed_at, actor_id, actor_role)
	  VALUES (?,?,?,?,CURRENT_TIMESTAMP,?,?)
	`, uuid.NewString(), bookingID, from, to, by.ID, by.Role)
	return err
}

func (r *BookingRepo) CostHistory(q sqlx.Queryer, bookingID string) ([]domain.CostChange, error) {
	out := []domain.CostChange{}
	err := sqlx.Select(q, &out, `
	  SELECT id, booking_id, from_total, to_total, changed_at, actor_id, actor_role
	  FROM cost_history WHERE booking_id = ? ORDER BY changed_at, id`, bookingID)
	return out, err
}

func (r *BookingRepo) StatusHistory(q sqlx.Queryer, bookingID string) ([]domain.StatusChange, error) {
	out := []domain.StatusChange{}
	err := sqlx.Select(q, &out, `
	  SELECT id, booking_id, from_status, to_status, changed_at, actor_id, actor_role
	  FROM status_history WHERE booking_id = ? ORDER BY changed_at, id`, bookingID)
	return out, err
}
