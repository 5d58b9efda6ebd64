package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eventstime/core/internal/models"
)

// ErrTokenInvalid covers every verification failure: bad signature,
// malformed structure, wrong token class, or expiry.
var ErrTokenInvalid = errors.New("token is invalid or expired")

// AccessClaims is the payload of short-lived access tokens.
type AccessClaims struct {
	UserID      uint             `json:"uid"`
	UserGroupID uint             `json:"gid"`
	AppClient   models.AppClient `json:"app_client"`
	jwtlib.RegisteredClaims
}

// RefreshClaims is the payload of long-lived refresh tokens. The signed
// string is additionally persisted per (user, app client) so the server can
// revoke it by overwrite.
type RefreshClaims struct {
	UserID    uint             `json:"uid"`
	AppClient models.AppClient `json:"app_client"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies both token classes. Access and refresh tokens use
// independent HS256 keys so one class can never be replayed as the other.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec builds a Codec from the two signing secrets and their expiry
// policies.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs an access token for the given user.
func (c *Codec) IssueAccess(userID uint, email string, userGroupID uint, appClient models.AppClient) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:      userID,
		UserGroupID: userGroupID,
		AppClient:   appClient,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

// IssueRefresh signs a refresh token for the given user.
func (c *Codec) IssueRefresh(userID uint, email string, appClient models.AppClient) (string, error) {
	now := time.Now()
	// The jti makes every refresh token unique even within the same
	// second, so rotation always swaps to a distinct value.
	claims := RefreshClaims{
		UserID:    userID,
		AppClient: appClient,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.refreshSecret)
}

// VerifyAccess validates signature and expiry against the access key.
func (c *Codec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parse(token, claims, c.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh validates signature and expiry against the refresh key.
func (c *Codec) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.parse(token, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) parse(token string, claims jwtlib.Claims, secret []byte) error {
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
