package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventstime/core/internal/models"
	jwtpkg "github.com/eventstime/core/internal/pkg/jwt"
)

func rateLimitTestContext(t *testing.T, authorization string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c.Request = req
	return c
}

func TestRateLimitExemptsValidAccessToken(t *testing.T) {
	codec := jwtpkg.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	token, err := codec.IssueAccess(1, "a@b.com", 1, models.AppClientClient)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	c := rateLimitTestContext(t, "Bearer "+token)
	if !rateLimitExempt(c, codec) {
		t.Fatal("a valid access token must bypass the limiter")
	}
}

func TestRateLimitCountsAnonymousRequests(t *testing.T) {
	codec := jwtpkg.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)

	c := rateLimitTestContext(t, "")
	if rateLimitExempt(c, codec) {
		t.Fatal("a request without a token must stay subject to the limiter")
	}
}

func TestRateLimitIgnoresForgedToken(t *testing.T) {
	codec := jwtpkg.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	forger := jwtpkg.NewCodec("other-secret", "other-refresh", time.Minute, time.Hour)
	token, err := forger.IssueAccess(1, "a@b.com", 1, models.AppClientClient)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	c := rateLimitTestContext(t, "Bearer "+token)
	if rateLimitExempt(c, codec) {
		t.Fatal("a token signed with a foreign key must not buy an exemption")
	}
}
