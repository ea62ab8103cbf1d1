// Package identity verifies tokens issued by the federated identity
// provider. The provider is a trusted oracle: a token either verifies and
// yields {uid, email}, or the login is rejected.
package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FederatedIdentity is what a verified provider token resolves to.
type FederatedIdentity struct {
	UID   string
	Email string
}

// TokenVerifier abstracts the provider so services can be tested without
// network credentials.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*FederatedIdentity, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier builds a verifier from a service-account credentials
// file. The file path comes from configuration; credentials are never
// embedded in the binary.
func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (TokenVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyToken(ctx context.Context, token string) (*FederatedIdentity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to verify provider token: %w", err)
	}

	email, _ := decoded.Claims["email"].(string)

	return &FederatedIdentity{
		UID:   decoded.UID,
		Email: email,
	}, nil
}

type disabledVerifier struct{}

// Disabled returns a verifier that rejects every token. Used when no
// provider credentials are configured, so wallet logins keep working.
func Disabled() TokenVerifier {
	return disabledVerifier{}
}

func (disabledVerifier) VerifyToken(ctx context.Context, token string) (*FederatedIdentity, error) {
	return nil, fmt.Errorf("federated identity provider is not configured")
}
