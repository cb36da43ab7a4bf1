package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"fixbay/internal/domain"
)

type NoticeRepo struct{ db *sqlx.DB }

func NewNoticeRepo(db *sqlx.DB) *NoticeRepo { return &NoticeRepo{db: db} }

const noticeCols = `
  id, booking_id, customer_id, proposed_price, previous_price, status,
  created_at, COALESCE(responded_at,'') AS responded_at`

func (r *NoticeRepo) Get(q sqlx.Queryer, id string) (domain.PriceApprovalNotice, error) {
	var n domain.PriceApprovalNotice
	err := sqlx.Get(q, &n, `SELECT `+noticeCols+` FROM notices WHERE id = ?`, id)
	return n, err
}

// SupersedePending retires every still-pending proposal for the booking, so
// the customer never acts on a price the booking no longer carries.
func (r *NoticeRepo) SupersedePending(ext sqlx.Ext, bookingID string) error {
	_, err := ext.Exec(`
	  UPDATE notices SET status = ? WHERE booking_id = ? AND status = ?
	`, domain.NoticeSuperseded, bookingID, domain.NoticePending)
	return err
}

// Create supersedes any still-pending proposal for the booking and inserts
// the new one: at most one notice per booking is ever authoritative.
func (r *NoticeRepo) Create(ext sqlx.Ext, bookingID, customerID string, proposed, previous decimal.Decimal) (string, error) {
	if err := r.SupersedePending(ext, bookingID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := ext.Exec(`
	  INSERT INTO notices(id, booking_id, customer_id, proposed_price, previous_price, status, created_at)
	  VALUES (?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, id, bookingID, customerID, proposed, previous, domain.NoticePending)
	return id, err
}

// Resolve flips a pending notice to accepted/rejected. Zero rows affected
// means the notice was already answered or superseded.
func (r *NoticeRepo) Resolve(ext sqlx.Ext, id, status string) (bool, error) {
	res, err := ext.Exec(`
	  UPDATE notices SET status = ?, responded_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = ?
	`, status, id, domain.NoticePending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *NoticeRepo) PendingForCustomer(customerID string) ([]domain.PriceApprovalNotice, error) {
	out := []domain.PriceApprovalNotice{}
	err := r.db.Select(&out, `
	  SELECT `+noticeCols+` FROM notices
	  WHERE customer_id = ? AND status = ?
	  ORDER BY datetime(created_at) DESC`, customerID, domain.NoticePending)
	return out, err
}
