package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"fixbay/internal/repos"
)

// memdb opens a fresh in-memory database with the real schema and seed users.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func addProduct(t *testing.T, db *sqlx.DB, id, name string, price float64, total, reserved int) {
	t.Helper()
	_, err := db.Exec(`
	  INSERT INTO products(id,seller_id,name,category,status,price,total_qty,reserved_qty)
	  VALUES(?, 'u-seed-seller', ?, 'screens', 'APPROVED', ?, ?, ?)
	`, id, name, price, total, reserved)
	if err != nil {
		t.Fatal(err)
	}
}

func addBooking(t *testing.T, db *sqlx.DB, id string, labor float64) {
	t.Helper()
	_, err := db.Exec(`
	  INSERT INTO bookings(id,customer_id,provider_id,service_type,status,labor_cost,product_cost,total_cost)
	  VALUES(?, 'u-carla', 'p-miguel', 'phone-repair', 'CONFIRMED', ?, 0, ?)
	`, id, labor, labor)
	if err != nil {
		t.Fatal(err)
	}
}

// nopNotifier / nopEmitter satisfy the fan-out ports without side effects.
type nopNotifier struct{}

func (nopNotifier) Notify(userID, kind, title, message, referenceID string, payload map[string]any) {}

type nopEmitter struct{}

func (nopEmitter) Emit(room, event string, payload map[string]any) {}
