package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shop-backend/internal/model"
	"shop-backend/pkg/apierror"
)

type claims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Marker    string `json:"mrk"`
	Type      string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 access/refresh tokens bound to a session.
type Issuer struct {
	secret     []byte
	marker     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, marker string, accessTTL time.Duration, refreshTTL time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	return &Issuer{
		secret:     []byte(secret),
		marker:     marker,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock replaces the time source used for both issuing and verifying.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) IssuePair(session model.Session, user model.User) (model.TokenPair, error) {
	now := i.now()

	accessToken, err := i.sign(session, user, model.TokenTypeAccess, now, i.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := i.sign(session, user, model.TokenTypeRefresh, now, i.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (i *Issuer) sign(session model.Session, user model.User, typ string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: session.ID.Hex(),
		UserID:    session.UserID.Hex(),
		Email:     user.Email,
		Role:      string(user.Role),
		Marker:    i.marker,
		Type:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(i.secret)
}

// Verify checks signature, expiry, marker and token type together. Any
// mismatch yields an UNAUTHORIZED APIError.
func (i *Issuer) Verify(tokenString string, expectedType string) (*model.AuthClaims, error) {
	var parsed claims
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), &parsed, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, apierror.Unauthorized("invalid or expired token")
	}

	if parsed.Marker != i.marker {
		return nil, apierror.Unauthorized("invalid token marker")
	}
	if expectedType != "" && parsed.Type != expectedType {
		return nil, apierror.Unauthorized("invalid token type")
	}
	if parsed.SessionID == "" || parsed.UserID == "" {
		return nil, apierror.Unauthorized("invalid token subject")
	}

	role, ok := model.ParseRole(parsed.Role)
	if !ok {
		return nil, apierror.Unauthorized("invalid token role")
	}

	return &model.AuthClaims{
		SessionID: parsed.SessionID,
		UserID:    parsed.UserID,
		Email:     parsed.Email,
		Role:      role,
		Type:      parsed.Type,
	}, nil
}

// BearerToken strips the "Bearer " scheme from an Authorization header value.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
