package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLog writes one structured line per request.  5xx responses are
// logged at error level, 4xx at warn.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo's error handler fill in the status before we read it
				c.Error(err)
			}
			req, res := c.Request(), c.Response()
			attrs := []any{
				slog.String("method", req.Method),
				slog.String("route", c.Path()),
				slog.String("uri", req.RequestURI),
				slog.Int("status", res.Status),
				slog.Int64("bytes", res.Size),
				slog.Duration("latency", time.Since(start)),
				slog.String("ip", c.RealIP()),
				slog.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				slog.String("user", currentUserID(c)),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			switch {
			case res.Status >= 500:
				log.Error("http.request", attrs...)
			case res.Status >= 400:
				log.Warn("http.request", attrs...)
			default:
				log.Info("http.request", attrs...)
			}
			return nil
		}
	}
}
