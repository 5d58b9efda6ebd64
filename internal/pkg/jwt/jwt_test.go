package jwt

import (
	"testing"
	"time"

	"github.com/eventstime/core/internal/models"
)

func newTestCodec(accessTTL, refreshTTL time.Duration) *Codec {
	return NewCodec("access-secret-for-tests", "refresh-secret-for-tests", accessTTL, refreshTTL)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c := newTestCodec(time.Minute, time.Hour)

	token, err := c.IssueAccess(1, "a@b.com", 2, models.AppClientClient)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	claims, err := c.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.UserID != 1 || claims.UserGroupID != 2 {
		t.Errorf("claims = uid %d gid %d, want 1/2", claims.UserID, claims.UserGroupID)
	}
	if claims.Subject != "a@b.com" {
		t.Errorf("subject = %q, want a@b.com", claims.Subject)
	}
	if claims.AppClient != models.AppClientClient {
		t.Errorf("app client = %q, want CLIENT", claims.AppClient)
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	c := newTestCodec(-time.Second, time.Hour)

	token, err := c.IssueAccess(1, "a@b.com", 1, models.AppClientClient)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if _, err := c.VerifyAccess(token); err != ErrTokenInvalid {
		t.Errorf("verify expired token: got %v, want ErrTokenInvalid", err)
	}
}

func TestTokenClassesAreIsolated(t *testing.T) {
	c := newTestCodec(time.Minute, time.Hour)

	access, _ := c.IssueAccess(1, "a@b.com", 1, models.AppClientClient)
	refresh, _ := c.IssueRefresh(1, "a@b.com", models.AppClientClient)

	if _, err := c.VerifyAccess(refresh); err != ErrTokenInvalid {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
	if _, err := c.VerifyRefresh(access); err != ErrTokenInvalid {
		t.Errorf("access token accepted as refresh token: %v", err)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	c := newTestCodec(time.Minute, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := c.VerifyRefresh(token); err != ErrTokenInvalid {
			t.Errorf("VerifyRefresh(%q) = %v, want ErrTokenInvalid", token, err)
		}
	}
}

func TestForeignKeyRejected(t *testing.T) {
	c := newTestCodec(time.Minute, time.Hour)
	other := NewCodec("other-access", "other-refresh", time.Minute, time.Hour)

	token, _ := other.IssueAccess(1, "a@b.com", 1, models.AppClientStand)
	if _, err := c.VerifyAccess(token); err != ErrTokenInvalid {
		t.Errorf("token signed with a foreign key accepted: %v", err)
	}
}
