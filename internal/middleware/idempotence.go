package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotenceHeader    = "x-idempotence"
	idempotenceKeyPrefix = "et:idempotence:"
	idempotenceWindow    = 60 * time.Second

	idempotencePending = "0"
	idempotenceDone    = "1"
)

// Idempotence suppresses duplicate mutating requests within a short window.
// A request claims its fingerprint in redis before running; a second request
// with the same fingerprint gets 409 until the window expires or the first
// one fails. Redis being unreachable degrades to letting everything through.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !idempotenceGuarded(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		fingerprint := requestFingerprint(c)
		if fingerprint == "" {
			c.Next()
			return
		}
		key := idempotenceKeyPrefix + fingerprint
		ctx := c.Request.Context()

		claimed, err := rdb.SetNX(ctx, key, idempotencePending, idempotenceWindow).Result()
		if err != nil {
			c.Next()
			return
		}
		if !claimed {
			msg := "identical request already succeeded, retry after 60 seconds"
			if state, _ := rdb.Get(ctx, key).Result(); state == idempotencePending {
				msg = "identical request is still being processed"
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"ok":      0,
				"code":    http.StatusConflict,
				"message": msg,
			})
			return
		}

		c.Next()

		if status := c.Writer.Status(); status >= 200 && status < 300 {
			rdb.Set(ctx, key, idempotenceDone, redis.KeepTTL)
		} else {
			rdb.Del(ctx, key)
		}
	}
}

// idempotenceGuarded reports whether the guard applies to this request.
// Reads are naturally idempotent, and the token endpoints are retried
// legitimately by clients.
func idempotenceGuarded(method, path string) bool {
	switch method {
	case http.MethodPost, http.MethodPut:
	default:
		return false
	}

	switch strings.TrimRight(strings.ToLower(path), "/") {
	case "/api/auth/login",
		"/api/auth/refresh-token",
		"/api/auth/logged":
		return false
	}
	return true
}

// requestFingerprint hashes everything that identifies a request as "the
// same one sent twice": method, URL, body, caller identity. Clients can
// pin their own key via the x-idempotence header instead.
func requestFingerprint(c *gin.Context) string {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		return hdr
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	h := sha256.New()
	for _, p := range [][]byte{
		[]byte(c.Request.Method),
		[]byte(c.Request.URL.String()),
		body,
		[]byte(c.Request.UserAgent()),
		[]byte(c.ClientIP()),
		[]byte(NormalizeToken(c.GetHeader("Authorization"))),
	} {
		h.Write(p)
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
