package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/model"
)

func newTestIssuer(t *testing.T, now *time.Time) *Issuer {
	t.Helper()

	issuer, err := NewIssuer("test-secret", "shop", 120*time.Second, 30*24*time.Hour)
	require.NoError(t, err)
	return issuer.WithClock(func() time.Time { return *now })
}

func fixture() (model.Session, model.User) {
	user := model.User{ID: primitive.NewObjectID(), Email: "a@b.com", Role: model.RoleCustomer}
	session := model.Session{ID: primitive.NewObjectID(), UserID: user.ID}
	return session, user
}

func TestIssuePairSharesIdentityClaims(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(t, &now)
	session, user := fixture()

	pair, err := issuer.IssuePair(session, user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := issuer.Verify(pair.AccessToken, model.TokenTypeAccess)
	require.NoError(t, err)
	refresh, err := issuer.Verify(pair.RefreshToken, model.TokenTypeRefresh)
	require.NoError(t, err)

	assert.Equal(t, session.ID.Hex(), access.SessionID)
	assert.Equal(t, user.ID.Hex(), access.UserID)
	assert.Equal(t, "a@b.com", access.Email)
	assert.Equal(t, model.RoleCustomer, access.Role)

	access.Type, refresh.Type = "", ""
	assert.Equal(t, access, refresh)
}

func TestAccessTokenExpiresAfterTTL(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(t, &now)
	session, user := fixture()

	pair, err := issuer.IssuePair(session, user)
	require.NoError(t, err)

	now = now.Add(119 * time.Second)
	_, err = issuer.Verify(pair.AccessToken, model.TokenTypeAccess)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = issuer.Verify(pair.AccessToken, model.TokenTypeAccess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNAUTHORIZED")

	_, err = issuer.Verify(pair.RefreshToken, model.TokenTypeRefresh)
	require.NoError(t, err, "refresh token outlives the access token")
}

func TestVerifyRejectsForeignOrTamperedTokens(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(t, &now)
	session, user := fixture()

	pair, err := issuer.IssuePair(session, user)
	require.NoError(t, err)

	t.Run("wrong type", func(t *testing.T) {
		_, err := issuer.Verify(pair.RefreshToken, model.TokenTypeAccess)
		require.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewIssuer("another-secret", "shop", time.Minute, time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(pair.AccessToken, model.TokenTypeAccess)
		require.Error(t, err)
	})

	t.Run("other marker", func(t *testing.T) {
		other, err := NewIssuer("test-secret", "elsewhere", time.Minute, time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(pair.AccessToken, model.TokenTypeAccess)
		require.Error(t, err)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sid": session.ID.Hex(),
			"uid": user.ID.Hex(),
			"mrk": "shop",
			"typ": model.TokenTypeAccess,
			"exp": now.Add(time.Minute).Unix(),
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(raw, model.TokenTypeAccess)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token", "")
		require.Error(t, err)
	})
}

func TestNewIssuerValidation(t *testing.T) {
	_, err := NewIssuer("", "shop", time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewIssuer("secret", "shop", 0, time.Hour)
	require.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	token, ok = BearerToken("bearer   xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)

	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)

	_, ok = BearerToken("")
	assert.False(t, ok)
}
