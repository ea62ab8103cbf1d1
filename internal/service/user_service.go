package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/config"
	"github.com/theroundhq/marketplace/internal/models"
	repo "github.com/theroundhq/marketplace/internal/repository/mongo"
	"github.com/theroundhq/marketplace/pkg/logger"
)

type UserService interface {
	// Resolve maps a verified external identity to the internal user,
	// creating one on first sight. Idempotent on uid.
	Resolve(ctx context.Context, su *models.SessionUser) (*models.User, error)

	FindByUID(ctx context.Context, uid string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	Whitelist(ctx context.Context, id primitive.ObjectID) error
	RemoveFromWhitelist(ctx context.Context, id primitive.ObjectID) error

	IssueOTP(ctx context.Context, id primitive.ObjectID) (string, time.Time, error)
	FindByOTP(ctx context.Context, otp string) (*models.User, error)

	ToggleEventBookmark(ctx context.Context, userID, eventID primitive.ObjectID) error
	ToggleVenueBookmark(ctx context.Context, userID, venueID primitive.ObjectID) error
}

type implUserService struct {
	repo repo.UserRepository
	conf config.AuthConfig
	l    logger.Logger
}

func NewUserService(repo repo.UserRepository, conf config.AuthConfig, l logger.Logger) UserService {
	return &implUserService{
		repo: repo,
		conf: conf,
		l:    l,
	}
}

func (s *implUserService) Resolve(ctx context.Context, su *models.SessionUser) (*models.User, error) {
	user, err := s.repo.FindByUID(ctx, su.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	newUser := &models.User{
		UID:         su.UID,
		Username:    su.Username,
		AccountType: su.AccountType,
		Roles:       []models.Role{models.RoleCustomer},
	}
	if su.AccountType == models.AccountTypeNear {
		newUser.NearWalletAccountID = su.UID
	}

	created, err := s.repo.Create(ctx, newUser)
	if err == nil {
		s.l.Infof(ctx, "userService.Resolve: created user %s", created.UID)
		return created, nil
	}

	// A concurrent first login can beat us to the insert; the unique
	// index on uid makes the race harmless.
	if errors.Is(err, repo.ErrDuplicate) {
		return s.repo.FindByUID(ctx, su.UID)
	}

	return nil, err
}

func (s *implUserService) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.repo.FindByUID(ctx, uid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *implUserService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *implUserService) FindAll(ctx context.Context) ([]models.User, error) {
	return s.repo.FindAll(ctx)
}

func (s *implUserService) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if len(u.Roles) == 0 {
		u.Roles = []models.Role{models.RoleCustomer}
	}
	return s.repo.Create(ctx, u)
}

func (s *implUserService) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	err := s.repo.Update(ctx, id, set)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *implUserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *implUserService) Whitelist(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.HasRole(models.RoleVenue) {
		return nil
	}
	return s.repo.AddRole(ctx, id, models.RoleVenue)
}

func (s *implUserService) RemoveFromWhitelist(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.RemoveRole(ctx, id, models.RoleVenue)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// IssueOTP mints a short-lived numeric password for in-person ticket
// check-in. The previous OTP, if any, is overwritten.
func (s *implUserService) IssueOTP(ctx context.Context, id primitive.ObjectID) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate otp: %w", err)
	}

	otp := fmt.Sprintf("%06d", n.Int64())
	expiresAt := time.Now().Add(s.conf.OTPTTL)

	if err := s.repo.SetOTP(ctx, id, otp, expiresAt); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", time.Time{}, ErrUserNotFound
		}
		return "", time.Time{}, err
	}

	return otp, expiresAt, nil
}

func (s *implUserService) FindByOTP(ctx context.Context, otp string) (*models.User, error) {
	user, err := s.repo.FindByOTP(ctx, otp)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.OTPExpiration == nil || time.Now().After(*user.OTPExpiration) {
		return nil, ErrOTPExpired
	}

	return user, nil
}

func (s *implUserService) ToggleEventBookmark(ctx context.Context, userID, eventID primitive.ObjectID) error {
	has, err := s.repo.HasEventBookmark(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if has {
		return s.repo.RemoveEventBookmark(ctx, userID, eventID)
	}
	return s.repo.AddEventBookmark(ctx, userID, eventID)
}

func (s *implUserService) ToggleVenueBookmark(ctx context.Context, userID, venueID primitive.ObjectID) error {
	has, err := s.repo.HasVenueBookmark(ctx, userID, venueID)
	if err != nil {
		return err
	}
	if has {
		return s.repo.RemoveVenueBookmark(ctx, userID, venueID)
	}
	return s.repo.AddVenueBookmark(ctx, userID, venueID)
}
