package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already linked to another identity")
	// errIdentityExists signals a concurrent first login for the same identity.
	errIdentityExists = errors.New("external identity already exists")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByExternalID(ctx context.Context, externalID string) (User, error)
	UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) error
}
