package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"portal_dashboard/backend/internal/shared"
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the portal's JWT claims. The user id is the subject, or the
// "id" claim for tokens issued by older portal versions.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	DarkMode bool   `json:"darkMode,omitempty"`
}

// RejectedError is returned for a token carrying a valid signature whose
// claims cannot be used. UserID names the user the token was issued to.
type RejectedError struct {
	UserID string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidToken, e.Reason)
}

func (e *RejectedError) Unwrap() error { return ErrInvalidToken }

func (c *Claims) userID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

// Verifier checks HS256 tokens signed with the portal's shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier returns a Verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses token and returns the session it describes.
func (v *Verifier) Verify(token string) (Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Context{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		// Claims are validated only after the signature checks out.
		if errors.Is(err, jwt.ErrTokenExpired) && claims.userID() != "" {
			return Context{}, &RejectedError{UserID: claims.userID(), Reason: "token expired"}
		}
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := claims.userID()
	role, ok := shared.ParseRole(claims.Role)
	if !ok {
		if id != "" {
			return Context{}, &RejectedError{UserID: id, Reason: fmt.Sprintf("unknown role %q", claims.Role)}
		}
		return Context{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	if id == "" {
		return Context{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	user := User{ID: id, Name: claims.Name, Email: claims.Email, Role: role}
	return New(token, user, Preferences{DarkMode: claims.DarkMode}), nil
}

// Sign issues a token for user; used by tests and local tooling.
func (v *Verifier) Sign(claims Claims) (string, error) {
	if v.issuer != "" && claims.Issuer == "" {
		claims.Issuer = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
