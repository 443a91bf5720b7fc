package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// UserProfile is the users/{uid} document. Followers and Following are the
// membership sets of the social graph; the counters are kept next to them.
type UserProfile struct {
	UID             string    `json:"uid" firestore:"uid" bson:"uid"`
	Email           string    `json:"email" firestore:"email" bson:"email"`
	DisplayName     string    `json:"displayName" firestore:"displayName" bson:"displayName"`
	Username        string    `json:"username" firestore:"username" bson:"username"`
	Avatar          string    `json:"avatar" firestore:"avatar" bson:"avatar"`
	BackgroundImage string    `json:"backgroundImage" firestore:"backgroundImage" bson:"backgroundImage"`
	Bio             string    `json:"bio" firestore:"bio" bson:"bio"`
	Followers       []string  `json:"followers" firestore:"followers" bson:"followers"`
	Following       []string  `json:"following" firestore:"following" bson:"following"`
	FollowersCount  int64     `json:"followersCount" firestore:"followersCount" bson:"followersCount"`
	FollowingCount  int64     `json:"followingCount" firestore:"followingCount" bson:"followingCount"`
	IsVerified      bool      `json:"isVerified" firestore:"isVerified" bson:"isVerified"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (u *UserProfile) SetID(id string) { u.UID = id }

// UserCompact is the public card of a profile embedded in other responses.
type UserCompact struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	IsVerified  bool   `json:"isVerified"`
}

// ToCompact strips membership sets and private fields.
func (u *UserProfile) ToCompact() UserCompact {
	return UserCompact{
		UID:         u.UID,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		Avatar:      u.Avatar,
		IsVerified:  u.IsVerified,
	}
}

// Account is a locally authenticated user (PostgreSQL). Its UID is also the id
// of the matching users/{uid} profile.
type Account struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UID       string    `json:"uid" gorm:"size:64;uniqueIndex"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"required,min=2,max=50"`
	Username    string `json:"username" validate:"required,username"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName     *string `json:"displayName,omitempty" validate:"omitempty,min=2,max=50"`
	Username        *string `json:"username,omitempty" validate:"omitempty,username"`
	Avatar          *string `json:"avatar,omitempty" validate:"omitempty,url"`
	BackgroundImage *string `json:"backgroundImage,omitempty" validate:"omitempty,url"`
	Bio             *string `json:"bio,omitempty" validate:"omitempty,max=300"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}
