package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"resume-analyzer/internal/shared/telemetry"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// GetOrCreate returns the account bound to the identity, creating it on
// first login. Display name and avatar follow the provider on later logins.
func (s *Service) GetOrCreate(ctx context.Context, id Identity) (User, bool, error) {
	if s == nil || s.Repo == nil {
		return User{}, false, errors.New("users service not configured")
	}
	id.Subject = strings.TrimSpace(id.Subject)
	id.Email = strings.ToLower(strings.TrimSpace(id.Email))
	if id.Subject == "" || id.Email == "" {
		return User{}, false, errors.New("identity subject and email are required")
	}

	existing, err := s.Repo.GetByExternalID(ctx, id.Subject)
	switch {
	case err == nil:
		return s.refreshProfile(ctx, existing, id), false, nil
	case !errors.Is(err, ErrNotFound):
		return User{}, false, fmt.Errorf("lookup identity: %w", err)
	}

	user := User{
		ID:                 uuid.NewString(),
		ExternalIdentityID: id.Subject,
		Email:              id.Email,
		DisplayName:        displayName(id),
		AvatarURL:          id.Picture,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, errIdentityExists) {
			// Lost a race with a concurrent first login.
			existing, getErr := s.Repo.GetByExternalID(ctx, id.Subject)
			if getErr != nil {
				return User{}, false, fmt.Errorf("reload identity: %w", getErr)
			}
			return existing, false, nil
		}
		return User{}, false, err
	}

	created, err := s.Repo.GetByID(ctx, user.ID)
	if err != nil {
		return User{}, false, fmt.Errorf("reload created user: %w", err)
	}
	telemetry.Info("users.created", map[string]any{"user_id": created.ID})
	return created, true, nil
}

func (s *Service) refreshProfile(ctx context.Context, user User, id Identity) User {
	name := displayName(id)
	if name == user.DisplayName && id.Picture == user.AvatarURL {
		return user
	}
	if err := s.Repo.UpdateProfile(ctx, user.ID, name, id.Picture); err != nil {
		telemetry.Warn("users.profile_refresh_failed", map[string]any{"user_id": user.ID, "err": err})
		return user
	}
	user.DisplayName = name
	user.AvatarURL = id.Picture
	return user
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func displayName(id Identity) string {
	if name := strings.TrimSpace(id.Name); name != "" {
		return name
	}
	if at := strings.Index(id.Email, "@"); at > 0 {
		return id.Email[:at]
	}
	return id.Email
}
