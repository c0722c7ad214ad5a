package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careledger/careledger/internal/platform/auth"
)

// AuditEntry captures who touched the registry, what they called, when,
// from where, and the outcome. The record history itself is append-only;
// this extends the same posture to the HTTP surface.
type AuditEntry struct {
	Principal  string
	Method     string
	Path       string
	Action     string // read or write
	IPAddress  string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder persists audit entries. Decoupled as an interface so tests
// can capture entries without a logger.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit returns middleware that records every authenticated call against the
// registries.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	recorder := AuditRecorderFunc(func(e AuditEntry) error {
		logger.Info().
			Str("principal", e.Principal).
			Str("method", e.Method).
			Str("path", e.Path).
			Str("action", e.Action).
			Str("remote_ip", e.IPAddress).
			Str("request_id", e.RequestID).
			Int("status", e.StatusCode).
			Msg("audit")
		return nil
	})
	return AuditWithRecorder(recorder)
}

// AuditWithRecorder is Audit with a caller-supplied sink.
func AuditWithRecorder(recorder AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			req := c.Request()
			action := "write"
			if req.Method == "GET" || req.Method == "HEAD" {
				action = "read"
			}
			rid, _ := c.Get("request_id").(string)

			entry := AuditEntry{
				Principal:  auth.PrincipalFromContext(req.Context()),
				Method:     req.Method,
				Path:       req.URL.Path,
				Action:     action,
				IPAddress:  c.RealIP(),
				RequestID:  rid,
				StatusCode: c.Response().Status,
				Timestamp:  time.Now().UTC(),
			}
			_ = recorder.RecordAccess(entry)

			return err
		}
	}
}
