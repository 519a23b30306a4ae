package middleware

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/notechat/internal/common"
)

type RateLimiter interface {
	Allow(ctx context.Context, subject string, limit int, window time.Duration) (bool, int64, error)
}

// RateLimit caps requests per authenticated owner in a fixed window. It is
// mounted after AuthRequired; a request with no owner in the context is
// keyed by client IP. A limiter error lets the request through.
func RateLimit(l RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := Owner(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}

		allowed, n, err := l.Allow(c.Request.Context(), subject, limit, window)
		if err != nil {
			log.Printf("[RateLimit] request_id=%s subject=%s err=%v", c.GetString(RequestIDKey), subject, err)
			c.Next()
			return
		}

		remaining := int64(limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			common.Abort(c, http.StatusTooManyRequests, 42901, "too many requests")
			return
		}
		c.Next()
	}
}
