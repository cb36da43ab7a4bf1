package services

import (
	"github.com/jmoiron/sqlx"

	"fixbay/internal/domain"
	applog "fixbay/internal/log"
	"fixbay/internal/repos"
)

// LedgerService owns every mutation of a product's stock counters. No other
// code path touches total_qty/reserved_qty, whichever subsystem is calling.
// It knows nothing about bookings; callers hand it a unit of execution (the
// db handle or an open transaction) so its writes can share the caller's tx.
type LedgerService struct {
	Products *repos.ProductRepo
}

func NewLedgerService(products *repos.ProductRepo) *LedgerService {
	return &LedgerService{Products: products}
}

// Reserve holds delta units against the pool. The availability check runs
// inside the conditional UPDATE, so concurrent callers cannot over-reserve
// off stale reads.
func (s *LedgerService) Reserve(ext sqlx.Ext, productID string, delta int) error {
	ok, err := s.Products.Reserve(ext, productID, delta)
	if err != nil {
		return err
	}
	if !ok {
		avail, aerr := s.Products.Available(ext, productID)
		if aerr != nil {
			return aerr
		}
		return &domain.InsufficientStockError{ProductID: productID, Available: avail, Requested: delta}
	}
	return nil
}

// Release gives a hold back, floored at zero. Hitting the floor means some
// caller released more than it held; that is a consistency bug worth a trace,
// not a reason to fail the release.
func (s *LedgerService) Release(ext sqlx.Ext, productID string, delta int) error {
	floored, err := s.Products.Release(ext, productID, delta)
	if err != nil {
		return err
	}
	if floored {
		applog.Security(nil, "ledger.release.floor", map[string]any{
			"product_id": productID, "delta": delta,
		})
	}
	return nil
}

// Consume spends reserved units for good: the part is physically installed
// and leaves inventory. Irreversible.
func (s *LedgerService) Consume(ext sqlx.Ext, productID string, delta int) error {
	return s.Products.Consume(ext, productID, delta)
}
