package repos

import (
	"github.com/jmoiron/sqlx"

	"fixbay/internal/domain"
)

// UserRepo is the trusted-identity surface: session -> user resolution.
// Login/logout live in a separate auth service outside this subsystem.
type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// SessionUser resolves the user bound to a session id, if any.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, `
	  SELECT u.id, u.email, u.name, u.role
	  FROM sessions s JOIN users u ON u.id = s.user_id
	  WHERE s.id = ?
	`, sid)
	if err != nil {
		return nil, err
	}
	_, _ = r.db.Exec(`UPDATE sessions SET last_seen = CURRENT_TIMESTAMP WHERE id = ?`, sid)
	return &u, nil
}
