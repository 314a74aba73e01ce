package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

type userDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	Role      string        `bson:"role"`
	CreatedAt time.Time     `bson:"created_at"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	doc := userDoc{
		ID:        bson.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if _, err := s.col(ColUsers).InsertOne(ctx, doc); err != nil {
		if err = wrapError(err); errors.Is(err, repository.ErrDuplicate) {
			return repository.ErrEmailExists
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	doc, err := findOne[userDoc](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, repository.ErrNotFound
	}
	return doc.toModel(), nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	return updateFields(ctx, s.col(ColUsers),
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "password", Value: passwordHash}})
}
