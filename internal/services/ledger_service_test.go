package services_test

import (
	"errors"
	"testing"

	"fixbay/internal/domain"
	"fixbay/internal/repos"
	"fixbay/internal/services"
)

func TestLedger_ReserveReleaseConsume(t *testing.T) {
	db := memdb(t)
	prodRepo := repos.NewProductRepo(db)
	ledger := services.NewLedgerService(prodRepo)

	addProduct(t, db, "p1", "Test Screen", 10, 5, 0)

	if err := ledger.Reserve(db, "p1", 3); err != nil {
		t.Fatal(err)
	}
	p, err := prodRepo.Get(db, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if p.ReservedQty != 3 || p.AvailableQty() != 2 {
		t.Fatalf("want reserved=3 available=2, got %+v", p)
	}

	// over-reservation rejected with the shortage attached
	err = ledger.Reserve(db, "p1", 3)
	var stock *domain.InsufficientStockError
	if !errors.As(err, &stock) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if stock.Available != 2 || stock.Requested != 3 {
		t.Fatalf("want available=2 requested=3, got %+v", stock)
	}

	// consume spends both counters
	if err := ledger.Consume(db, "p1", 2); err != nil {
		t.Fatal(err)
	}
	p, _ = prodRepo.Get(db, "p1")
	if p.TotalQty != 3 || p.ReservedQty != 1 {
		t.Fatalf("want total=3 reserved=1, got %+v", p)
	}

	// release floors at zero instead of going negative
	if err := ledger.Release(db, "p1", 5); err != nil {
		t.Fatal(err)
	}
	p, _ = prodRepo.Get(db, "p1")
	if p.ReservedQty != 0 {
		t.Fatalf("want reserved=0 after floored release, got %d", p.ReservedQty)
	}
}

// The capacity invariant: 0 <= reserved <= total after every operation.
func TestLedger_CapacityInvariant(t *testing.T) {
	db := memdb(t)
	prodRepo := repos.NewProductRepo(db)
	ledger := services.NewLedgerService(prodRepo)

	addProduct(t, db, "p1", "Test Screen", 10, 4, 0)

	ops := []func() error{
		func() error { return ledger.Reserve(db, "p1", 2) },
		func() error { return ledger.Reserve(db, "p1", 2) },
		func() error { return ledger.Reserve(db, "p1", 1) }, // must fail, full
		func() error { return ledger.Release(db, "p1", 1) },
		func() error { return ledger.Consume(db, "p1", 2) },
		func() error { return ledger.Release(db, "p1", 9) }, // floors
		func() error { return ledger.Consume(db, "p1", 9) }, // floors
	}
	for i, op := range ops {
		_ = op() // failures are part of the sequence
		p, err := prodRepo.Get(db, "p1")
		if err != nil {
			t.Fatal(err)
		}
		if p.ReservedQty < 0 || p.ReservedQty > p.TotalQty || p.TotalQty < 0 {
			t.Fatalf("invariant broken after op %d: total=%d reserved=%d", i, p.TotalQty, p.ReservedQty)
		}
	}
}

func TestCheckout_CannotSellReservedStock(t *testing.T) {
	db := memdb(t)
	prodRepo := repos.NewProductRepo(db)
	ledger := services.NewLedgerService(prodRepo)
	checkout := services.NewCheckoutService(prodRepo)

	addProduct(t, db, "p1", "Test Screen", 10, 5, 0)
	if err := ledger.Reserve(db, "p1", 4); err != nil {
		t.Fatal(err)
	}

	// one free unit left; the storefront cannot take two
	err := checkout.Purchase("p1", 2)
	var stock *domain.InsufficientStockError
	if !errors.As(err, &stock) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if err := checkout.Purchase("p1", 1); err != nil {
		t.Fatal(err)
	}

	p, _ := prodRepo.Get(db, "p1")
	if p.TotalQty != 4 || p.ReservedQty != 4 {
		t.Fatalf("want total=4 reserved=4, got %+v", p)
	}
}
