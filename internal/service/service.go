// Package service implements the REST API of the contacts book on top of gin.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/dirk.krummacker/contacts-book/internal/metrics"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
)

// ContactStore is the persistence the contact endpoints work on. Lookups return nil, not an
// error, when the contact does not exist.
type ContactStore interface {
	List(ctx context.Context, limit, offset int) ([]model.Contact, error)
	Find(ctx context.Context, name, surname, email string) (*model.Contact, error)
	Get(ctx context.Context, id int64) (*model.Contact, error)
	Create(ctx context.Context, c model.NewContact) (*model.Contact, error)
	Update(ctx context.Context, id int64, patch model.ContactPatch) (*model.Contact, error)
	Delete(ctx context.Context, id int64) (*model.Contact, error)
	UpcomingBirthdays(ctx context.Context, today time.Time) ([]model.Contact, error)
}

// UserStore is the persistence of user accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u model.NewUser) (*model.User, error)
	UpdateRefreshToken(ctx context.Context, user *model.User, token *string) error
}

// Tokens issues and verifies bearer tokens. The parse methods return the email address of the
// token subject.
type Tokens interface {
	IssueAccessToken(email string) (string, error)
	IssueRefreshToken(email string) (string, error)
	ParseAccessToken(token string) (string, error)
	ParseRefreshToken(token string) (string, error)
}

// Pinger checks that the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies are the collaborators of the API. Contacts, Users and Tokens are required.
type Dependencies struct {
	Contacts ContactStore
	Users    UserStore
	Tokens   Tokens
	DB       Pinger

	// Metrics and Gatherer are optional. Without a Gatherer there is no /metrics endpoint.
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	Logger             *slog.Logger
	Now                func() time.Time
	LoginRatePerMinute int
	RequestLogging     bool
}

type handler struct {
	deps    Dependencies
	limiter *loginLimiter
}

// NewRouter initializes the REST API router and registers all endpoints.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &handler{
		deps:    deps,
		limiter: newLoginLimiter(deps.LoginRatePerMinute, deps.Now),
	}

	router := gin.New()
	router.Use(gin.Recovery(), correlationID())
	if deps.RequestLogging {
		router.Use(requestLogger(deps.Logger))
	} else {
		deps.Logger.Info("turning off HTTP request logging")
	}
	if deps.Metrics != nil {
		router.Use(recordMetrics(deps.Metrics))
	}

	router.GET("/healthz", h.health)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	authRoutes := router.Group("/auth")
	authRoutes.POST("/signup", h.signup)
	authRoutes.POST("/login", h.limitLogins, h.login)
	authRoutes.GET("/refresh_token", h.refreshToken)

	contacts := router.Group("/contacts", h.requireUser)
	contacts.GET("", h.listContacts)
	contacts.POST("", h.createContact)
	contacts.GET("/search", h.searchContacts)
	contacts.GET("/birthdays", h.upcomingBirthdays)
	contacts.GET("/:id", h.findContactByID)
	contacts.PUT("/:id", h.updateContactByID)
	contacts.PATCH("/:id", h.updateContactByID)
	contacts.DELETE("/:id", h.deleteContactByID)
	return router
}
