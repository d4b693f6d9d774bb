package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/apperr"
	"docvault/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// statusForCode maps the application error taxonomy onto HTTP statuses.
// Codes not listed here are server-side failures and map to 500.
var statusForCode = map[apperr.Code]int{
	apperr.CodeAuthRequired:    fiber.StatusUnauthorized,
	apperr.CodeUnauthorized:    fiber.StatusUnauthorized,
	apperr.CodeNotFound:        fiber.StatusNotFound,
	apperr.CodeInvalidInput:    fiber.StatusBadRequest,
	apperr.CodeFileTooLarge:    fiber.StatusBadRequest,
	apperr.CodeInvalidFileType: fiber.StatusBadRequest,
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeAppError serializes an application error: code, safe message and the
// optional structured details. The wrapped cause never reaches the client.
func writeAppError(c *fiber.Ctx, ae *apperr.Error) error {
	status, ok := statusForCode[ae.Code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    string(ae.Code),
			Message: ae.Message,
			Details: ae.Details,
		},
	}
	return c.Status(status).JSON(res)
}

// errLog writes one JSON object per line to stderr, mirroring the request
// logger's format on stdout.
var errLog = json.NewEncoder(os.Stderr)

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses. Application errors carry their own code and client-safe message;
// everything else is collapsed into a generic envelope. maxUploadBytes is the
// configured upload ceiling, reported when Fiber's body limit rejects a
// request before any handler runs.
func ErrorHandler(maxUploadBytes int64) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			if ae.Severity == apperr.SeverityHigh || ae.Severity == apperr.SeverityCritical {
				entry := map[string]any{
					"level":      "error",
					"request_id": requestIDFromCtx(c),
					"code":       string(ae.Code),
					"severity":   string(ae.Severity),
					"message":    ae.Message,
				}
				if ae.Cause != nil {
					entry["cause"] = ae.Cause.Error()
				}
				_ = errLog.Encode(entry)
			}
			return writeAppError(c, ae)
		}

		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, string(apperr.CodeInvalidInput), "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, string(apperr.CodeNotFound), "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			// The body limit cut the request off before any handler saw it, so
			// the size details come from the request framing instead. Keep the
			// 413 rather than the 400 the service-level rejection maps to.
			res := errorPayload{
				RequestID: requestIDFromCtx(c),
				Error: errorEnvelope{
					Code:    string(apperr.CodeFileTooLarge),
					Message: fmt.Sprintf("File exceeds the %d MB limit", maxUploadBytes/(1024*1024)),
					Details: map[string]any{
						"limit_bytes":  maxUploadBytes,
						"actual_bytes": int64(c.Request().Header.ContentLength()),
					},
				},
			}
			return c.Status(status).JSON(res)
		default:
			return writeError(c, status, string(apperr.CodeServerError), "internal server error")
		}
	}
}
