package service

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/contacts-book/internal/metrics"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
	"golang.org/x/time/rate"
)

// CorrelationIDHeader carries the id that ties the log lines of one request together.
const CorrelationIDHeader = "X-Correlation-ID"

const (
	correlationIDKey = "correlation_id"
	userKey          = "user"
)

// correlationID takes the correlation id from the request or generates a new one, and echoes it
// in the response.
func correlationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

func correlationIDOf(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

// requestLogger writes one structured log line per request. Client errors are logged as
// warnings, server errors as errors.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
			slog.String("client_ip", c.ClientIP()),
			slog.String("correlation_id", correlationIDOf(c)),
		)
	}
}

// recordMetrics counts requests per route template, so /contacts/1 and /contacts/2 share a
// series.
func recordMetrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// requireUser lets the request pass only with a valid access token of an existing user. The user
// is stored in the context.
func (h *handler) requireUser(c *gin.Context) {
	user, _, err := h.authenticate(c, h.deps.Tokens.ParseAccessToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Set(userKey, user)
	c.Next()
}

// authenticate verifies the bearer token of the request with parse and loads its user. It
// returns the raw token as well.
func (h *handler) authenticate(c *gin.Context, parse func(string) (string, error)) (*model.User, string, error) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil, "", fmt.Errorf("%w: missing bearer token", model.ErrUnauthorized)
	}
	email, err := parse(token)
	if err != nil {
		return nil, "", err
	}
	user, err := h.deps.Users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", fmt.Errorf("%w: unknown user", model.ErrUnauthorized)
	}
	return user, token, nil
}

// bearerToken extracts the token from an Authorization header of the form "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// limitLogins rejects login attempts from a client that exceeds the configured rate.
func (h *handler) limitLogins(c *gin.Context) {
	if h.limiter.allow(c.ClientIP()) {
		c.Next()
		return
	}
	h.recordLogin(metrics.LoginLimited)
	h.deps.Logger.Warn("login rate limit exceeded",
		slog.String("client_ip", c.ClientIP()),
		slog.String("correlation_id", correlationIDOf(c)),
	)
	c.Header("Retry-After", strconv.Itoa(h.limiter.retryAfterSeconds()))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many login attempts, try again later"})
}

// limiterIdleTimeout is how long the limiter of a silent client is kept.
const limiterIdleTimeout = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiter is a token bucket per client IP address.
type loginLimiter struct {
	perMinute int
	now       func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newLoginLimiter(perMinute int, now func() time.Time) *loginLimiter {
	if perMinute < 1 {
		perMinute = 10
	}
	return &loginLimiter{
		perMinute: perMinute,
		now:       now,
		clients:   make(map[string]*clientLimiter),
		lastSweep: now(),
	}
}

func (l *loginLimiter) allow(ip string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > limiterIdleTimeout {
		for key, cl := range l.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTimeout {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(float64(l.perMinute)/60), l.perMinute)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// retryAfterSeconds is the time until the bucket holds a token again.
func (l *loginLimiter) retryAfterSeconds() int {
	return max(int(math.Ceil(60/float64(l.perMinute))), 1)
}

func (l *loginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
