package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fixbay/internal/domain"
)

type NotificationRepo struct{ db *sqlx.DB }

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Insert(userID, kind, title, message, referenceID, payloadJSON string) error {
	_, err := r.db.Exec(`
	  INSERT INTO notifications(id, user_id, kind, title, message, reference_id, payload_json, created_at)
	  VALUES (?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, uuid.NewString(), userID, kind, title, message, referenceID, payloadJSON)
	return err
}

func (r *NotificationRepo) ListByUser(userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []domain.Notification{}
	err := r.db.Select(&out, `
	  SELECT id, user_id, kind, title, message,
	         COALESCE(reference_id,'') AS reference_id,
	         COALESCE(payload_json,'') AS payload_json, created_at
	  FROM notifications
	  WHERE user_id = ?
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?`, userID, limit)
	return out, err
}
