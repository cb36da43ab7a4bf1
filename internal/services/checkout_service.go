package services

import (
	"database/sql"
	"errors"

	"fixbay/internal/domain"
	"fixbay/internal/repos"
)

// CheckoutService is the storefront's direct-purchase path. It shares the
// stock pool with booking reservations but goes through the same guarded
// ledger writes, so it can never sell a unit a provider is holding.
type CheckoutService struct {
	Products *repos.ProductRepo
}

func NewCheckoutService(products *repos.ProductRepo) *CheckoutService {
	return &CheckoutService{Products: products}
}

// Purchase takes qty unreserved units out of inventory.
func (s *CheckoutService) Purchase(productID string, qty int) error {
	db := s.Products.DB()
	p, err := s.Products.Get(db, productID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && p.Status != "APPROVED") {
		return &domain.NotFoundError{Kind: "product", ID: productID}
	}
	if err != nil {
		return err
	}
	ok, err := s.Products.Purchase(db, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		avail, aerr := s.Products.Available(db, productID)
		if aerr != nil {
			return aerr
		}
		return &domain.InsufficientStockError{ProductID: productID, Available: avail, Requested: qty}
	}
	return nil
}
