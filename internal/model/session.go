package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session anchors one token pair to a user so it can be rotated or revoked.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"uid"`
	CreatedAt time.Time          `bson:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt"`
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AuthClaims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Type      string `json:"typ"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type SignInResult struct {
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Status Status    `json:"status"`
	Role   Role      `json:"role"`
	Tokens TokenPair `json:"tokens"`
}

type SocialLoginResult struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Status       Status `json:"status"`
	Role         Role   `json:"role"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IsNew        bool   `json:"isNew"`
	UserID       string `json:"userId"`
}
