package middleware

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
)

// loggerSkipPaths lists endpoints whose traffic is infrastructure noise, not user
// activity. They stay out of the request log entirely.
var loggerSkipPaths = map[string]struct{}{
	"/metrics": {},
	"/healthz": {},
}

// Logger logs each completed request as one JSON object per line on stdout:
// request_id, method, path, status, latency in milliseconds and, when a
// session was verified, the caller's user_id. Infrastructure endpoints are skipped.
func Logger() fiber.Handler {
	return loggerTo(os.Stdout)
}

func loggerTo(w io.Writer) fiber.Handler {
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		if _, skip := loggerSkipPaths[c.Path()]; skip {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		// Fields are collected after the handler ran so the entry carries the
		// final status and whatever the auth middleware put in locals.
		entry := map[string]any{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": float64(time.Since(start).Microseconds()) / 1000,
		}
		if rid, ok := c.Locals(RequestIDLocalKey).(string); ok {
			entry["request_id"] = rid
		}
		if uid, ok := c.Locals(auth.LocalUserID).(string); ok && uid != "" {
			entry["user_id"] = uid
		}
		if err != nil {
			entry["error"] = err.Error()
		}
		_ = enc.Encode(entry)

		return err
	}
}
