package handlers

import (
	"github.com/jmoiron/sqlx"

	"fixbay/internal/notify"
	"fixbay/internal/realtime"
	"fixbay/internal/repos"
	"fixbay/internal/services"
)

type Deps struct {
	Users *repos.UserRepo

	PartsHandler        *PartsHandler
	ApprovalHandler     *ApprovalHandler
	NotificationHandler *NotificationHandler
	EventsHandler       *EventsHandler
	CheckoutHandler     *CheckoutHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	bookRepo := repos.NewBookingRepo(db)
	noticeRepo := repos.NewNoticeRepo(db)
	notifRepo := repos.NewNotificationRepo(db)

	hub := realtime.NewHub()
	dispatcher := notify.NewDispatcher(notifRepo)

	ledgerSvc := services.NewLedgerService(prodRepo)
	partsSvc := services.NewPartsService(db, prodRepo, bookRepo, noticeRepo, ledgerSvc, dispatcher, hub)
	approvalSvc := services.NewApprovalService(db, bookRepo, noticeRepo, dispatcher, hub)
	checkoutSvc := services.NewCheckoutService(prodRepo)

	return &Deps{
		Users:               userRepo,
		PartsHandler:        &PartsHandler{Parts: partsSvc},
		ApprovalHandler:     &ApprovalHandler{Approval: approvalSvc},
		NotificationHandler: &NotificationHandler{Repo: notifRepo},
		EventsHandler:       &EventsHandler{Hub: hub},
		CheckoutHandler:     &CheckoutHandler{Checkout: checkoutSvc},
	}
}
