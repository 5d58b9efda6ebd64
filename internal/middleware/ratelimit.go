package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	jwtpkg "github.com/eventstime/core/internal/pkg/jwt"
)

const (
	rateLimitKeyPrefix  = "et:rate_limit:"
	rateLimitPerSecond  = 50
	rateLimitBucketLife = 2 * time.Second
)

// RateLimit caps unauthenticated traffic at a per-IP requests-per-second
// budget, counted in one-second redis buckets. The limiter runs before the
// route-level auth middleware, so it verifies the bearer token itself to
// decide the exemption. Redis failures fail open.
func RateLimit(rdb *redis.Client, codec *jwtpkg.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" || rateLimitExempt(c, codec) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		bucket := rateLimitKeyPrefix + ip + ":" + strconv.FormatInt(time.Now().Unix(), 10)

		count, err := rdb.Incr(ctx, bucket).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, bucket, rateLimitBucketLife)
		}
		if count > rateLimitPerSecond {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":      0,
				"code":    http.StatusTooManyRequests,
				"message": "too many requests, slow down",
			})
			return
		}

		c.Next()
	}
}

// rateLimitExempt reports whether the request carries a valid access
// token. A malformed or forged token does not buy an exemption.
func rateLimitExempt(c *gin.Context, codec *jwtpkg.Codec) bool {
	token := NormalizeToken(c.GetHeader("Authorization"))
	if token == "" {
		return false
	}
	_, err := codec.VerifyAccess(token)
	return err == nil
}
