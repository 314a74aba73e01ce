package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

// CreateUser inserts u and assigns its ID.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?,?,?,?,?,?)",
		id, u.Name, u.Email, u.PasswordHash, u.Role, formatTS(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrEmailExists
		}
		return err
	}
	u.ID = id
	return nil
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u       model.User
		created string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, role, created_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &created)
	if err != nil {
		return nil, wrapError(err)
	}
	if u.CreatedAt, err = parseTS(created); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserPassword replaces the stored hash.
func (s *Store) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE email=?", passwordHash, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
