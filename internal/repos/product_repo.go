package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"fixbay/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// DB exposes the handle so services can open transactions spanning the
// product ledger and the booking aggregate.
func (r *ProductRepo) DB() *sqlx.DB { return r.db }

const productCols = `
  id, seller_id, name, COALESCE(description,'') AS description,
  COALESCE(brand,'') AS brand, COALESCE(sku,'') AS sku,
  category, COALESCE(subcategory,'') AS subcategory,
  COALESCE(compatibility,'') AS compatibility, status, price,
  total_qty, reserved_qty, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Get(q sqlx.Queryer, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(q, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

// Search filters approved products: free-text OR across name/description/
// brand/compatibility/sku, exact category filters, all case-insensitive.
func (r *ProductRepo) Search(q, category, subcategory, compat string, limit int) ([]domain.ProductSummary, error) {
	where := `status = 'APPROVED'`
	args := []any{}
	if q != "" {
		like := "%" + q + "%"
		where += ` AND (LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)
		  OR LOWER(brand) LIKE LOWER(?) OR LOWER(compatibility) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?))`
		args = append(args, like, like, like, like, like)
	}
	if category != "" {
		where += ` AND LOWER(category) = LOWER(?)`
		args = append(args, category)
	}
	if subcategory != "" {
		where += ` AND LOWER(subcategory) = LOWER(?)`
		args = append(args, subcategory)
	}
	if compat != "" {
		where += ` AND LOWER(compatibility) LIKE LOWER(?)`
		args = append(args, "%"+compat+"%")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	args = append(args, limit)

	var out []domain.ProductSummary
	err := r.db.Select(&out, `
	  SELECT id, name, COALESCE(brand,'') AS brand, COALESCE(sku,'') AS sku,
	         category, COALESCE(subcategory,'') AS subcategory, price,
	         MAX(total_qty - reserved_qty, 0) AS available
	  FROM products
	  WHERE `+where+`
	  ORDER BY LOWER(name)
	  LIMIT ?`, args...)
	return out, err
}

// Reserve holds delta units. The capacity check lives inside the UPDATE so
// two concurrent reservations cannot both pass on a stale read; zero rows
// affected means the hold would exceed total_qty.
func (r *ProductRepo) Reserve(ext sqlx.Ext, id string, delta int) (bool, error) {
	res, err := ext.Exec(`
	  UPDATE products
	  SET reserved_qty = reserved_qty + ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND reserved_qty + ? <= total_qty
	`, delta, id, delta)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Release gives delta units back, floored at zero. Returns whether the floor
// was hit, which indicates a bookkeeping bug upstream.
func (r *ProductRepo) Release(ext sqlx.Ext, id string, delta int) (floored bool, err error) {
	var reserved int
	if err := sqlx.Get(ext, &reserved, `SELECT reserved_qty FROM products WHERE id = ?`, id); err != nil {
		return false, err
	}
	if _, err := ext.Exec(`
	  UPDATE products
	  SET reserved_qty = MAX(reserved_qty - ?, 0), updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, delta, id); err != nil {
		return false, err
	}
	return reserved < delta, nil
}

// Consume spends delta units for good: both counters drop together.
func (r *ProductRepo) Consume(ext sqlx.Ext, id string, delta int) error {
	_, err := ext.Exec(`
	  UPDATE products
	  SET total_qty    = MAX(total_qty - ?, 0),
	      reserved_qty = MAX(reserved_qty - ?, 0),
	      updated_at   = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, delta, delta, id)
	return err
}

// Purchase is the storefront checkout path: it takes unreserved stock only,
// so booking holds are never sold out from under a provider. Zero rows
// affected means not enough free stock.
func (r *ProductRepo) Purchase(ext sqlx.Ext, id string, qty int) (bool, error) {
	res, err := ext.Exec(`
	  UPDATE products
	  SET total_qty = total_qty - ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND total_qty - ? >= reserved_qty
	`, qty, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Available recomputes free stock from a fresh read, for error payloads.
func (r *ProductRepo) Available(q sqlx.Queryer, id string) (int, error) {
	var avail int
	err := sqlx.Get(q, &avail, `
	  SELECT MAX(total_qty - reserved_qty, 0) FROM products WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("available stock for %s: %w", id, err)
	}
	return avail, nil
}
