package ember

import (
	"fmt"
	"time"
)

// LoggerMiddleware logs every request with timing and client context
func LoggerMiddleware() MiddlewareFunc {
	return func(c Context) error {
		start := time.Now()

		err := c.Next()

		logContext := map[string]interface{}{
			"method":      c.Method(),
			"url":         c.URL(),
			"user_agent":  c.Header("User-Agent"),
			"remote_ip":   c.RemoteIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		}

		message := fmt.Sprintf("%s %s", c.Method(), c.URL())
		if err != nil {
			logContext["error"] = err.Error()
			Error(message, logContext)
		} else {
			Info(message, logContext)
		}

		return err
	}
}

// RecoveryMiddleware converts handler panics into 500 responses
func RecoveryMiddleware(handler *ErrorHandler) MiddlewareFunc {
	return func(c Context) error {
		defer func() {
			if r := recover(); r != nil {
				Error("Panic recovered in request handler", map[string]interface{}{
					"panic":  fmt.Sprintf("%v", r),
					"method": c.Method(),
					"url":    c.URL(),
				})

				httpErr := NewHTTPError(500, "Internal Server Error")
				httpErr.Internal = fmt.Errorf("panic recovered: %v", r)
				handler.Handle(c, httpErr)
				c.Abort()
			}
		}()

		return c.Next()
	}
}

// CORSMiddleware allows cross-origin requests from the given origins
func CORSMiddleware(origins ...string) MiddlewareFunc {
	allowedOrigins := make(map[string]bool)
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return func(c Context) error {
		origin := c.Header("Origin")

		if len(allowedOrigins) == 0 || allowedOrigins["*"] || allowedOrigins[origin] {
			c.SetHeader("Access-Control-Allow-Origin", origin)
		}

		c.SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.SetHeader("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Method() == "OPTIONS" {
			c.Status(204)
			c.Abort()
			return nil
		}

		return c.Next()
	}
}
