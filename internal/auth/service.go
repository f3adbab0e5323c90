package auth

import (
	"context"
	"fmt"
	"strings"

	sharedauth "resume-analyzer/internal/shared/auth"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/users"
)

// Session is the result of a successful login.
type Session struct {
	User  users.User `json:"user"`
	Token string     `json:"token"`
}

// Service turns verified identities into accounts and session tokens.
type Service struct {
	Verifier IdentityVerifier
	Users    *users.Service
	Signer   *sharedauth.Signer
}

// Login verifies a provider credential and opens a session.
func (s *Service) Login(ctx context.Context, credential string) (Session, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Session{}, fmt.Errorf("%w: empty credential", ErrInvalidCredential)
	}
	identity, err := s.Verifier.Verify(ctx, credential)
	if err != nil {
		return Session{}, err
	}
	return s.Open(ctx, identity)
}

// Open creates the account on first use and signs a session token for it.
func (s *Service) Open(ctx context.Context, identity users.Identity) (Session, error) {
	user, created, err := s.Users.GetOrCreate(ctx, identity)
	if err != nil {
		return Session{}, err
	}
	token, err := s.Signer.Sign(sharedauth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.DisplayName,
	})
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	telemetry.Info("auth.login", map[string]any{"user_id": user.ID, "created": created})
	return Session{User: user, Token: token}, nil
}
