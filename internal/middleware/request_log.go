package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/gofiber/fiber/v3"
)

// RequestRecorder accepts finished request logs without blocking.
type RequestRecorder interface {
	Record(entry domain.RequestLog) bool
}

// ThreatClassifier flags requests that look like attacks.
type ThreatClassifier interface {
	Classify(rawURL, body string) bool
}

// RequestLogger records one request log per completed request and flags
// possible threats. The write happens off the request path. A panicking
// handler is recorded as a 500 before the panic continues to the recover
// middleware.
func RequestLogger(recorder RequestRecorder, classifier ThreatClassifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Capture request data BEFORE handler execution (Fiber reuses context objects)
		method := strings.Clone(c.Method())
		rawURL := strings.Clone(c.OriginalURL())
		body := string(c.Body())
		ip := strings.Clone(c.IP())
		userAgent := strings.Clone(c.Get(fiber.HeaderUserAgent))

		record := func(status int) {
			recorder.Record(domain.RequestLog{
				IP:         ip,
				Method:     method,
				Path:       rawURL,
				UserAgent:  userAgent,
				Status:     status,
				IsThreat:   classifier.Classify(rawURL, body),
				DurationMS: time.Since(start).Milliseconds(),
				CreatedAt:  start.UTC(),
			})
		}

		defer func() {
			if r := recover(); r != nil {
				record(fiber.StatusInternalServerError)
				panic(r)
			}
		}()

		err := c.Next()
		record(responseStatus(c, err))
		return err
	}
}

// responseStatus mirrors what the error handler will send when the chain
// returned an error.
func responseStatus(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
