package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
	"github.com/tapin-io/attendance-api/pkg/response"
)

type rateCounter interface {
	IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ReaderRateLimit throttles RFID scanner traffic per reader token with a
// fixed one-minute window in Redis. A broken Redis never blocks scans; the
// limiter fails open.
func ReaderRateLimit(counter rateCounter, perMinute int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || perMinute <= 0 {
			c.Next()
			return
		}
		token := c.GetHeader("X-Reader-Token")
		if token == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:reader:%s", token)
		count, err := counter.IncrWithWindow(c.Request.Context(), key, time.Minute)
		if err != nil {
			if logger != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
			}
			c.Next()
			return
		}
		if count > int64(perMinute) {
			response.Error(c, appErrors.Wrap(nil, "RATE_LIMITED", http.StatusTooManyRequests, "reader is sending scans too fast"))
			c.Abort()
			return
		}
		c.Next()
	}
}
