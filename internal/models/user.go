package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccountType string

const (
	AccountTypeNear      AccountType = "near"
	AccountTypeFederated AccountType = "firebase"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVenue    Role = "venue"
	RoleAdmin    Role = "admin"
)

// User is the internal identity record. UID is the external identity: a
// NEAR account name or a federated-auth subject. UID and Username are
// unique across the collection.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID         string             `bson:"uid" json:"uid"`
	Username    string             `bson:"username" json:"username"`
	AccountType AccountType        `bson:"accountType" json:"accountType"`
	Roles       []Role             `bson:"roles" json:"roles"`

	NearWalletAccountID string `bson:"nearWalletAccountId,omitempty" json:"nearWalletAccountId,omitempty"`

	BookmarkedEvents []primitive.ObjectID `bson:"bookmarkedEvents,omitempty" json:"bookmarkedEvents,omitempty"`
	BookmarkedVenues []primitive.ObjectID `bson:"bookmarkedVenues,omitempty" json:"bookmarkedVenues,omitempty"`

	OTP           string     `bson:"otp,omitempty" json:"-"`
	OTPExpiration *time.Time `bson:"otpExpirationDate,omitempty" json:"-"`

	IsActive   bool      `bson:"isActive" json:"isActive"`
	IsCensored bool      `bson:"isCensored" json:"isCensored"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// SessionUser is the identity bundle carried inside a session token.
type SessionUser struct {
	UID         string      `json:"uid"`
	Username    string      `json:"username"`
	AccountType AccountType `json:"accountType"`
	Roles       []Role      `json:"roles"`
}

func (su *SessionUser) HasRole(role Role) bool {
	for _, r := range su.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (su *SessionUser) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if su.HasRole(r) {
			return true
		}
	}
	return false
}
