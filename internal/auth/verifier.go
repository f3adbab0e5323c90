package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"resume-analyzer/internal/users"
)

// ErrInvalidCredential is returned when the identity provider rejects a credential.
var ErrInvalidCredential = errors.New("invalid identity credential")

// IdentityVerifier exchanges a provider-issued credential for a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (users.Identity, error)
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier validates Google ID tokens issued for this client.
type GoogleVerifier struct {
	audience string
	validate validateFunc
}

// NewGoogleVerifier builds a verifier bound to the OAuth client ID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: strings.TrimSpace(clientID), validate: idtoken.Validate}
}

// Verify checks signature, audience and expiry of an ID token.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (users.Identity, error) {
	if v.audience == "" {
		return users.Identity{}, errors.New("google client id not configured")
	}
	payload, err := v.validate(ctx, credential, v.audience)
	if err != nil {
		return users.Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return identityFromClaims(payload.Subject, payload.Claims)
}

func identityFromClaims(subject string, claims map[string]any) (users.Identity, error) {
	if subject == "" {
		return users.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}
	id := users.Identity{
		Subject: subject,
		Email:   claimString(claims, "email"),
		Name:    claimString(claims, "name"),
		Picture: claimString(claims, "picture"),
	}
	if id.Email == "" {
		return users.Identity{}, fmt.Errorf("%w: missing email", ErrInvalidCredential)
	}
	if verified, ok := claims["email_verified"].(bool); ok && !verified {
		return users.Identity{}, fmt.Errorf("%w: email not verified", ErrInvalidCredential)
	}
	return id, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
