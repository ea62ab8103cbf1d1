package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/theroundhq/marketplace/config"
	"github.com/theroundhq/marketplace/internal/identity"
	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/pkg/logger"
)

// SignatureVerifier is the chain-backed proof check for NEAR logins.
type SignatureVerifier interface {
	Verify(ctx context.Context, accountID string, signature, publicKey []byte) error
}

type AuthService interface {
	LoginWithNear(ctx context.Context, accountID string, signature, publicKey []byte) (string, error)
	LoginWithFederated(ctx context.Context, providerToken string) (string, error)
	VerifyToken(ctx context.Context, token string) (*models.SessionUser, error)
}

type implAuthService struct {
	users     UserService
	verifier  SignatureVerifier
	federated identity.TokenVerifier
	conf      config.JWTConfig
	l         logger.Logger
}

func NewAuthService(
	users UserService,
	verifier SignatureVerifier,
	federated identity.TokenVerifier,
	conf config.JWTConfig,
	l logger.Logger,
) AuthService {
	return &implAuthService{
		users:     users,
		verifier:  verifier,
		federated: federated,
		conf:      conf,
		l:         l,
	}
}

// LoginWithNear verifies the signed proof against the claimed account and
// its on-chain key registry, resolves the internal user, and mints a
// session token.
func (s *implAuthService) LoginWithNear(ctx context.Context, accountID string, signature, publicKey []byte) (string, error) {
	if err := s.verifier.Verify(ctx, accountID, signature, publicKey); err != nil {
		s.l.Warnf(ctx, "authService.LoginWithNear: rejected login for %q", accountID)
		return "", ErrInvalidCredentials
	}

	user, err := s.users.Resolve(ctx, &models.SessionUser{
		UID:         accountID,
		Username:    accountID,
		AccountType: models.AccountTypeNear,
		Roles:       []models.Role{models.RoleCustomer},
	})
	if err != nil {
		s.l.Errorf(ctx, "authService.LoginWithNear: %v", err)
		return "", err
	}

	return s.issueToken(user)
}

func (s *implAuthService) LoginWithFederated(ctx context.Context, providerToken string) (string, error) {
	fid, err := s.federated.VerifyToken(ctx, providerToken)
	if err != nil {
		s.l.Warnf(ctx, "authService.LoginWithFederated: rejected provider token")
		return "", ErrInvalidCredentials
	}

	user, err := s.users.Resolve(ctx, &models.SessionUser{
		UID:         fid.UID,
		Username:    fid.Email,
		AccountType: models.AccountTypeFederated,
		Roles:       []models.Role{models.RoleCustomer},
	})
	if err != nil {
		s.l.Errorf(ctx, "authService.LoginWithFederated: %v", err)
		return "", err
	}

	return s.issueToken(user)
}

// issueToken mints a stateless session token. Roles are frozen at issuance
// time; a promotion takes effect on the next login.
func (s *implAuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"uid":         user.UID,
		"username":    user.Username,
		"accountType": string(user.AccountType),
		"roles":       user.Roles,
		"iat":         now.Unix(),
		"exp":         now.Add(s.conf.Expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(s.conf.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenStr, nil
}

func (s *implAuthService) VerifyToken(ctx context.Context, token string) (*models.SessionUser, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredentials
		}
		return []byte(s.conf.Secret), nil
	})
	if err != nil || !parsed.Valid {
		s.l.Warnf(ctx, "authService.VerifyToken: invalid token: %v", err)
		return nil, ErrInvalidCredentials
	}

	uid, _ := claims["uid"].(string)
	username, _ := claims["username"].(string)
	accountType, _ := claims["accountType"].(string)
	if uid == "" {
		return nil, ErrInvalidCredentials
	}

	var roles []models.Role
	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, r := range rawRoles {
			if rs, ok := r.(string); ok {
				roles = append(roles, models.Role(rs))
			}
		}
	}

	return &models.SessionUser{
		UID:         uid,
		Username:    username,
		AccountType: models.AccountType(accountType),
		Roles:       roles,
	}, nil
}
