package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"fixbay/internal/domain"
	"fixbay/internal/repos"
	"fixbay/internal/services"
)

type ApprovalFlowSuite struct {
	suite.Suite
	db       *sqlx.DB
	parts    *services.PartsService
	approval *services.ApprovalService
	products *repos.ProductRepo
	bookings *repos.BookingRepo

	customer domain.Actor
}

func (s *ApprovalFlowSuite) SetupTest() {
	db, err := repos.OpenDB(":memory:")
	s.Require().NoError(err)
	s.db = db

	s.products = repos.NewProductRepo(db)
	s.bookings = repos.NewBookingRepo(db)
	noticeRepo := repos.NewNoticeRepo(db)
	ledger := services.NewLedgerService(s.products)
	s.parts = services.NewPartsService(db, s.products, s.bookings, noticeRepo, ledger, nopNotifier{}, nopEmitter{})
	s.approval = services.NewApprovalService(db, s.bookings, noticeRepo, nopNotifier{}, nopEmitter{})

	s.customer = domain.Actor{ID: "u-carla", Role: "CUSTOMER"}

	s.db.MustExec(`
	  INSERT INTO bookings(id,customer_id,provider_id,service_type,status,labor_cost,product_cost,total_cost)
	  VALUES('bk1','u-carla','p-miguel','phone-repair','CONFIRMED',500,0,500)`)
	s.db.MustExec(`
	  INSERT INTO products(id,seller_id,name,category,status,price,total_qty,reserved_qty)
	  VALUES('prod-x','u-seed-seller','Part X','screens','APPROVED',200,10,0)`)
}

func (s *ApprovalFlowSuite) TearDownTest() {
	_ = s.db.Close()
}

// pendingNotice fetches the customer's single authoritative proposal.
func (s *ApprovalFlowSuite) pendingNotice() domain.PriceApprovalNotice {
	notices, err := s.approval.PendingNotices(s.customer.ID)
	s.Require().NoError(err)
	s.Require().Len(notices, 1)
	return notices[0]
}

func (s *ApprovalFlowSuite) TestHappyPath() {
	_, err := s.parts.LinkProduct(provider, "bk1", "prod-x", 1, true)
	s.NoError(err)

	p, err := s.products.Get(s.db, "prod-x")
	s.NoError(err)
	s.Equal(1, p.ReservedQty)
	s.Equal(9, p.AvailableQty())

	n := s.pendingNotice()
	s.True(n.ProposedPrice.Equal(decimal.NewFromInt(700)))
	s.True(n.PreviousPrice.Equal(decimal.NewFromInt(500)))

	b, err := s.approval.AcceptPrice(s.customer, n.ID)
	s.NoError(err)
	s.True(b.PriceApproved)
	s.Equal(domain.ApprovalAccepted, b.ApprovalStatus)

	_, err = s.parts.UpdateAllocation(provider, "bk1", "prod-x", domain.AllocationAllocated)
	s.NoError(err)
	_, err = s.parts.UpdateAllocation(provider, "bk1", "prod-x", domain.AllocationInstalled)
	s.NoError(err)

	p, _ = s.products.Get(s.db, "prod-x")
	s.Equal(9, p.TotalQty)
	s.Equal(0, p.ReservedQty)
}

func (s *ApprovalFlowSuite) TestRejectionAndStaleAccept() {
	_, err := s.parts.LinkProduct(provider, "bk1", "prod-x", 1, false)
	s.NoError(err)
	n := s.pendingNotice()

	b, err := s.approval.RejectPrice(s.customer, n.ID)
	s.NoError(err)
	s.False(b.PriceApproved)
	s.Equal(domain.ApprovalRejected, b.ApprovalStatus)
	// rejection alone does not cancel the booking
	s.Equal("CONFIRMED", b.Status)

	_, err = s.approval.AcceptPrice(s.customer, n.ID)
	var resolved *domain.AlreadyResolvedError
	s.ErrorAs(err, &resolved)
}

func (s *ApprovalFlowSuite) TestSupersededNoticeIsStale() {
	_, err := s.parts.LinkProduct(provider, "bk1", "prod-x", 1, false)
	s.NoError(err)
	first := s.pendingNotice()

	// provider edits again before the customer responds
	_, err = s.parts.LinkProduct(provider, "bk1", "prod-x", 2, false)
	s.NoError(err)
	second := s.pendingNotice()
	s.NotEqual(first.ID, second.ID)

	_, err = s.approval.AcceptPrice(s.customer, first.ID)
	var resolved *domain.AlreadyResolvedError
	s.ErrorAs(err, &resolved)

	// the newest proposal still works
	b, err := s.approval.AcceptPrice(s.customer, second.ID)
	s.NoError(err)
	s.True(b.PriceApproved)
}

func (s *ApprovalFlowSuite) TestCancelAfterRejection() {
	_, err := s.parts.LinkProduct(provider, "bk1", "prod-x", 1, false)
	s.NoError(err)
	n := s.pendingNotice()

	_, err = s.approval.RejectPrice(s.customer, n.ID)
	s.NoError(err)

	b, err := s.approval.CancelAfterRejection(s.customer, n.ID)
	s.NoError(err)
	s.Equal(domain.BookingRejected, b.Status)

	hist, err := s.bookings.StatusHistory(s.db, "bk1")
	s.NoError(err)
	s.Require().Len(hist, 1)
	s.Equal("CONFIRMED", hist[0].FromStatus)
	s.Equal(domain.BookingRejected, hist[0].ToStatus)
	s.Equal(s.customer.ID, hist[0].ActorID)

	// already terminal: a second cancellation is refused
	_, err = s.approval.CancelAfterRejection(s.customer, n.ID)
	var state *domain.InvalidBookingStateError
	s.ErrorAs(err, &state)

	// cancellation leaves the reservation in place (explicit product gap)
	p, _ := s.products.Get(s.db, "prod-x")
	s.Equal(1, p.ReservedQty)
}

func (s *ApprovalFlowSuite) TestCancelDirectlyFromPending() {
	_, err := s.parts.LinkProduct(provider, "bk1", "prod-x", 1, false)
	s.NoError(err)
	n := s.pendingNotice()

	b, err := s.approval.CancelAfterRejection(s.customer, n.ID)
	s.NoError(err)
	s.Equal(domain.BookingRejected, b.Status)
	s.Equal(domain.ApprovalRejected, b.ApprovalStatus)
}

func (s *ApprovalFlowSuite) TestForeignNoticeReadsAsNotFound() {
	_, err := s.parts.LinkProduct(provider, "bk1", "prod-x", 1, false)
	s.NoError(err)
	n := s.pendingNotice()

	stranger := domain.Actor{ID: "u-dev", Role: "CUSTOMER"}
	_, err = s.approval.AcceptPrice(stranger, n.ID)
	var nf *domain.NotFoundError
	s.ErrorAs(err, &nf)
}

func TestApprovalFlowSuite(t *testing.T) {
	suite.Run(t, new(ApprovalFlowSuite))
}
