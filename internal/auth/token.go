package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes short-lived access tokens from long-lived refresh
// tokens. A token of one kind is never accepted where the other is required.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	// ErrTokenMalformed indicates the token could not be decoded or its
	// signature does not verify.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenExpired indicates the token was valid but is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenWrongKind indicates an access token was presented where a
	// refresh token is required, or vice versa.
	ErrTokenWrongKind = errors.New("token is of the wrong kind")
)

type claims struct {
	Kind Kind `json:"type"`
	jwt.RegisteredClaims
}

// Issuer mints and validates signed bearer tokens. Tokens are stateless:
// there is no revocation list, so a leaked token stays valid until expiry.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the issuer's time source. Used by tests to walk tokens
// across their expiry.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// AccessToken mints a short-lived access token for the given user.
func (i *Issuer) AccessToken(userID int64) (string, error) {
	return i.sign(userID, KindAccess, i.accessTTL)
}

// RefreshToken mints a long-lived refresh token for the given user.
func (i *Issuer) RefreshToken(userID int64) (string, error) {
	return i.sign(userID, KindRefresh, i.refreshTTL)
}

func (i *Issuer) sign(userID int64, kind Kind, ttl time.Duration) (string, error) {
	now := i.now().UTC()
	c := claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Parse validates a token string against the issuer's secret and the expected
// kind, returning the embedded user id. Validation is a pure function of the
// token, the secret and the clock.
func (i *Issuer) Parse(tokenString string, kind Kind) (int64, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return i.secret, nil
		},
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenMalformed
	}

	if c.Kind != kind {
		return 0, ErrTokenWrongKind
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrTokenMalformed
	}
	return userID, nil
}
