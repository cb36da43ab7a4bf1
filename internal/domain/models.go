package domain

import "github.com/shopspring/decimal"

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Role  string `db:"role"` // CUSTOMER | PROVIDER | SELLER | ADMIN
}

// Actor identifies who performed a mutation; written into history rows.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type Product struct {
	ID            string          `db:"id"`
	SellerID      string          `db:"seller_id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Brand         string          `db:"brand"`
	SKU           string          `db:"sku"`
	Category      string          `db:"category"`
	Subcategory   string          `db:"subcategory"`
	Compatibility string          `db:"compatibility"` // comma-separated tags
	Status        string          `db:"status"`        // PENDING | APPROVED | REJECTED
	Price         decimal.Decimal `db:"price"`
	TotalQty      int             `db:"total_qty"`
	ReservedQty   int             `db:"reserved_qty"`
	CreatedAt     string          `db:"created_at"`
	UpdatedAt     string          `db:"updated_at"`
}

// AvailableQty is the stock not held by any reservation.
func (p Product) AvailableQty() int {
	if n := p.TotalQty - p.ReservedQty; n > 0 {
		return n
	}
	return 0
}

// ProductSummary is a search result annotated with computed availability.
type ProductSummary struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Brand       string          `db:"brand" json:"brand"`
	SKU         string          `db:"sku" json:"sku"`
	Category    string          `db:"category" json:"category"`
	Subcategory string          `db:"subcategory" json:"subcategory"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Available   int             `db:"available" json:"availableStock"`
}

// Booking statuses. The full booking lifecycle is driven elsewhere; this
// subsystem only reads them and writes REJECTED on post-rejection cancellation.
const (
	BookingPending    = "PENDING"
	BookingConfirmed  = "CONFIRMED"
	BookingInProgress = "IN_PROGRESS"
	BookingCompleted  = "COMPLETED"
	BookingRejected   = "REJECTED"
)

// BookingTerminal reports whether no further status transition is allowed.
func BookingTerminal(status string) bool {
	return status == BookingCompleted || status == BookingRejected
}

// Price approval statuses on a booking.
const (
	ApprovalNone     = "NONE"
	ApprovalPending  = "PENDING"
	ApprovalAccepted = "ACCEPTED"
	ApprovalRejected = "REJECTED"
)

type ServiceBooking struct {
	ID             string          `db:"id"`
	CustomerID     string          `db:"customer_id"`
	ProviderID     string          `db:"provider_id"`
	ServiceType    string          `db:"service_type"`
	Description    string          `db:"description"`
	ScheduledAt    string          `db:"scheduled_at"`
	Status         string          `db:"status"`
	LaborCost      decimal.Decimal `db:"labor_cost"`
	ProductCost    decimal.Decimal `db:"product_cost"`
	TotalCost      decimal.Decimal `db:"total_cost"`
	ApprovalStatus string          `db:"approval_status"` // NONE | PENDING | ACCEPTED | REJECTED
	PriceApproved  bool            `db:"price_approved"`
	CreatedAt      string          `db:"created_at"`
	UpdatedAt      string          `db:"updated_at"`

	LinkedProducts []LinkedProduct `db:"-"`
}

type LinkedProduct struct {
	BookingID    string          `db:"booking_id" json:"-"`
	ProductID    string          `db:"product_id" json:"productId"`
	ProductName  string          `db:"product_name" json:"productName"`
	Qty          int             `db:"qty" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unitPrice"`
	TotalPrice   decimal.Decimal `db:"total_price" json:"totalPrice"`
	Installation bool            `db:"installation" json:"installationRequired"`
	Allocation   string          `db:"allocation" json:"allocationStatus"`
	ReservedAt   string          `db:"reserved_at" json:"reservedAt"`
	AllocatedAt  string          `db:"allocated_at" json:"allocatedAt,omitempty"`
	InstalledAt  string          `db:"installed_at" json:"installedAt,omitempty"`
}

// CostChange is one append-only cost-history record. Rows are only ever
// inserted; nothing in the repo layer can update or delete them.
type CostChange struct {
	ID        string          `db:"id" json:"-"`
	BookingID string          `db:"booking_id" json:"-"`
	FromTotal decimal.Decimal `db:"from_total" json:"from"`
	ToTotal   decimal.Decimal `db:"to_total" json:"to"`
	ChangedAt string          `db:"changed_at" json:"changedAt"`
	ActorID   string          `db:"actor_id" json:"actorId"`
	ActorRole string          `db:"actor_role" json:"actorRole"`
}

// StatusChange mirrors CostChange for booking status transitions.
type StatusChange struct {
	ID         string `db:"id" json:"-"`
	BookingID  string `db:"booking_id" json:"-"`
	FromStatus string `db:"from_status" json:"from"`
	ToStatus   string `db:"to_status" json:"to"`
	ChangedAt  string `db:"changed_at" json:"changedAt"`
	ActorID    string `db:"actor_id" json:"actorId"`
	ActorRole  string `db:"actor_role" json:"actorRole"`
}

// Notice statuses. SUPERSEDED marks a pending proposal replaced by a newer
// one before the customer responded; acting on it answers AlreadyResolved.
const (
	NoticePending    = "PENDING"
	NoticeAccepted   = "ACCEPTED"
	NoticeRejected   = "REJECTED"
	NoticeSuperseded = "SUPERSEDED"
)

type PriceApprovalNotice struct {
	ID            string          `db:"id" json:"id"`
	BookingID     string          `db:"booking_id" json:"bookingId"`
	CustomerID    string          `db:"customer_id" json:"-"`
	ProposedPrice decimal.Decimal `db:"proposed_price" json:"proposedPrice"`
	PreviousPrice decimal.Decimal `db:"previous_price" json:"previousPrice"`
	Status        string          `db:"status" json:"status"`
	CreatedAt     string          `db:"created_at" json:"createdAt"`
	RespondedAt   string          `db:"responded_at" json:"respondedAt,omitempty"`
}

type Notification struct {
	ID          string `db:"id" json:"id"`
	UserID      string `db:"user_id" json:"-"`
	Kind        string `db:"kind" json:"kind"`
	Title       string `db:"title" json:"title"`
	Message     string `db:"message" json:"message"`
	ReferenceID string `db:"reference_id" json:"referenceId"`
	PayloadJSON string `db:"payload_json" json:"payload,omitempty"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}
