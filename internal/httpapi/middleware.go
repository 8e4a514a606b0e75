package httpapi

import (
	"net/http"
	"strings"
	gosync "sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
)

const userKey = "user"

// requestLogger logs one line per request.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			s.logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
			)
			return err
		}
	}
}

// sessionToken reads the session from the cookie or a bearer header.
func (s *Server) sessionToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(s.config.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// sessionMiddleware resolves the caller's account when a valid session
// is presented. Requests without one continue unauthenticated.
func (s *Server) sessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := s.sessionToken(c)
			if token == "" {
				return next(c)
			}
			req := c.Request()
			user, err := s.auth.CurrentUser(req.Context(), token)
			if err != nil {
				return next(c)
			}
			c.Set(userKey, user)
			c.SetRequest(req.WithContext(logging.WithUserID(req.Context(), user.ID)))
			return next(c)
		}
	}
}

// guardMiddleware redirects unauthenticated page requests to sign in.
func (s *Server) guardMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			redirect, allowed := s.guard.Decide(c.Request().URL.Path, currentUser(c) != nil)
			if !allowed {
				return c.Redirect(http.StatusSeeOther, redirect)
			}
			return next(c)
		}
	}
}

// requireUser rejects API requests without a session.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

func currentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

func userID(c echo.Context) string {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return ""
}

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu          gosync.Mutex
	limiters    map[string]*rate.Limiter
	lastCleanup time.Time
	rps         rate.Limit
	burst       int
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 10
	}
	return &ipLimiter{
		limiters:    make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
		rps:         rate.Limit(rps),
		burst:       burst,
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Reset hourly so idle clients do not accumulate.
	if time.Since(l.lastCleanup) > time.Hour {
		l.limiters = make(map[string]*rate.Limiter)
		l.lastCleanup = time.Now()
	}

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// rateLimit applies the per-IP limiter to a route group.
func (s *Server) rateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !s.limiter.get(c.RealIP()).Allow() {
				RateLimited.Inc()
				s.logger.Warn(c.Request().Context(), "rate limit exceeded", zap.String("ip", c.RealIP()))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
