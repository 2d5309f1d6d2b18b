package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_dashboard/backend/internal/shared"
)

func validClaims(role string) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-42",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Name:     "Asha",
		Role:     role,
		DarkMode: true,
	}
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier("secret", "portal")
	token, err := v.Sign(validClaims("faculty"))
	require.NoError(t, err)

	sess, err := v.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, token, sess.Token())
	assert.Equal(t, "u-42", sess.User().ID)
	assert.Equal(t, shared.RoleTeacher, sess.User().Role)
	assert.True(t, sess.Preferences().DarkMode)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("secret", "portal")

	expired := validClaims("student")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expiredToken, err := v.Sign(expired)
	require.NoError(t, err)

	otherKey, err := NewVerifier("other", "portal").Sign(validClaims("student"))
	require.NoError(t, err)

	badRole, err := v.Sign(validClaims("janitor"))
	require.NoError(t, err)

	noSubject := validClaims("student")
	noSubject.Subject = ""
	noSubjectToken, err := v.Sign(noSubject)
	require.NoError(t, err)

	wrongIssuer := validClaims("student")
	wrongIssuer.Issuer = "elsewhere"
	wrongIssuerToken, err := v.Sign(wrongIssuer)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"expired":      expiredToken,
		"wrong key":    otherKey,
		"unknown role": badRole,
		"no subject":   noSubjectToken,
		"wrong issuer": wrongIssuerToken,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyNamesUserOfRejectedToken(t *testing.T) {
	v := NewVerifier("secret", "portal")

	expired := validClaims("student")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expiredToken, err := v.Sign(expired)
	require.NoError(t, err)

	badRole, err := v.Sign(validClaims("janitor"))
	require.NoError(t, err)

	otherKey, err := NewVerifier("other", "portal").Sign(expired)
	require.NoError(t, err)

	for _, token := range []string{expiredToken, badRole} {
		_, err := v.Verify(token)
		var rejected *RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "u-42", rejected.UserID)
	}

	// A forged token never names a user.
	_, err = v.Verify(otherKey)
	var rejected *RejectedError
	assert.False(t, errors.As(err, &rejected))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyFallsBackToIDClaim(t *testing.T) {
	v := NewVerifier("secret", "")
	claims := validClaims("student")
	claims.Subject = ""
	claims.UserID = "legacy-7"
	token, err := v.Sign(claims)
	require.NoError(t, err)

	sess, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "legacy-7", sess.User().ID)
}

func TestContextIsImmutable(t *testing.T) {
	sess := New("tok", User{ID: "u1", Role: shared.RoleStudent}, Preferences{})
	dark := sess.WithTheme(true)

	assert.False(t, sess.Preferences().DarkMode)
	assert.True(t, dark.Preferences().DarkMode)

	ctx := WithContext(context.Background(), sess)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, sess, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
