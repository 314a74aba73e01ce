package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/utils"
)

// UserRepo applies the credential policy on top of a UserStore: email
// normalization, password length and hashing. New accounts are stored with
// lower-cased emails; accounts written before normalization may carry mixed
// case and are still found by an exact-match fallback.
type UserRepo struct {
	store  UserStore
	rounds int
	now    func() time.Time
}

func NewUserRepo(store UserStore, rounds int) *UserRepo {
	return &UserRepo{store: store, rounds: rounds, now: time.Now}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the "user" role.
func (r *UserRepo) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if err := utils.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return r.create(ctx, name, email, password, model.RoleUser)
}

// EnsureAdmin creates an admin account unless the email is already
// registered. created reports whether a new account was written. The
// registration password policy is not applied; operators pick the seed
// password.
func (r *UserRepo) EnsureAdmin(ctx context.Context, name, email, password string) (u *model.User, created bool, err error) {
	existing, err := r.lookup(ctx, email)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}
	u, err = r.create(ctx, name, email, password, model.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (r *UserRepo) create(ctx context.Context, name, email, password, role string) (*model.User, error) {
	name = strings.TrimSpace(name)
	raw := strings.TrimSpace(email)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, validationError("name, email and password are required")
	}
	if _, err := r.lookup(ctx, raw); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := utils.HashPassword(password, r.rounds)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    r.now().UTC(),
	}
	if err := r.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user when email and password match.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := r.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email, falling back to the
// address exactly as given.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.lookup(ctx, email)
}

func (r *UserRepo) lookup(ctx context.Context, email string) (*model.User, error) {
	norm := NormalizeEmail(email)
	u, err := r.store.GetUserByEmail(ctx, norm)
	if !errors.Is(err, ErrNotFound) {
		return u, err
	}
	if raw := strings.TrimSpace(email); raw != norm && raw != "" {
		return r.store.GetUserByEmail(ctx, raw)
	}
	return nil, err
}

// ResetPassword replaces the password of the account registered under email.
func (r *UserRepo) ResetPassword(ctx context.Context, email, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	u, err := r.lookup(ctx, email)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword, r.rounds)
	if err != nil {
		return err
	}
	return r.store.UpdateUserPassword(ctx, u.Email, hash)
}
