package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-book/internal/auth"
	"gitlab.com/dirk.krummacker/contacts-book/internal/metrics"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
	public "gitlab.com/dirk.krummacker/contacts-book/pkg/model"
)

// signup creates a user account. The password is stored as a bcrypt hash.
//
// Example REST API call:
//
//	> curl http://localhost:8080/auth/signup --request "POST" --include --header "Content-Type: application/json" --data '{"username": "erika", "email": "erika@example.com", "password": "secret"}'
func (h *handler) signup(c *gin.Context) {
	var body public.UserSchema
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	if err := body.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	existing, err := h.deps.Users.GetByEmail(ctx, body.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if existing != nil {
		h.respondError(c, fmt.Errorf("email %s: %w", body.Email, model.ErrConflict))
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.deps.Users.Create(ctx, model.NewUser{
		Username: body.Username,
		Email:    body.Email,
		Password: hash,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.recordSignup()
	h.deps.Logger.Info("user signed up", slog.Int64("user_id", user.Id))
	c.IndentedJSON(http.StatusCreated, public.UserResponse{
		Id:       user.Id,
		Username: user.Username,
		Email:    user.Email,
	})
}

// login checks the credentials sent as form fields and responds with a new token pair. The
// refresh token is stored with the user, replacing the previous one.
//
// Example REST API call:
//
//	> curl http://localhost:8080/auth/login --request "POST" --data "username=erika@example.com&password=secret"
func (h *handler) login(c *gin.Context) {
	var form public.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid form"})
		return
	}
	if err := form.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.deps.Users.GetByEmail(ctx, form.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if user == nil {
		h.recordLogin(metrics.LoginFailure)
		h.respondError(c, fmt.Errorf("%w: Invalid email", model.ErrUnauthorized))
		return
	}
	if !auth.VerifyPassword(form.Password, user.Password) {
		h.recordLogin(metrics.LoginFailure)
		h.respondError(c, fmt.Errorf("%w: Invalid password", model.ErrUnauthorized))
		return
	}

	tokens, err := h.issueTokens(c, user)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.recordLogin(metrics.LoginSuccess)
	c.IndentedJSON(http.StatusOK, tokens)
}

// refreshToken exchanges the refresh token sent as bearer token for a new token pair. The token
// must be the one stored with the user. A valid token that does not match is treated as reuse of
// a revoked token: the stored token is cleared so that the user has to log in again.
//
// Example REST API call:
//
//	> curl http://localhost:8080/auth/refresh_token --header "Authorization: Bearer eyJhbGciOi..."
func (h *handler) refreshToken(c *gin.Context) {
	user, token, err := h.authenticate(c, h.deps.Tokens.ParseRefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if user.RefreshToken == nil || *user.RefreshToken != token {
		if err := h.deps.Users.UpdateRefreshToken(c.Request.Context(), user, nil); err != nil {
			h.respondError(c, err)
			return
		}
		h.deps.Logger.Warn("refresh token does not match the stored one",
			slog.Int64("user_id", user.Id),
			slog.String("correlation_id", correlationIDOf(c)),
		)
		h.respondError(c, fmt.Errorf("%w: Invalid refresh token", model.ErrUnauthorized))
		return
	}

	tokens, err := h.issueTokens(c, user)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, tokens)
}

// issueTokens creates an access and a refresh token for the user and stores the refresh token.
func (h *handler) issueTokens(c *gin.Context, user *model.User) (public.TokenResponse, error) {
	access, err := h.deps.Tokens.IssueAccessToken(user.Email)
	if err != nil {
		return public.TokenResponse{}, err
	}
	refresh, err := h.deps.Tokens.IssueRefreshToken(user.Email)
	if err != nil {
		return public.TokenResponse{}, err
	}
	if err := h.deps.Users.UpdateRefreshToken(c.Request.Context(), user, &refresh); err != nil {
		return public.TokenResponse{}, err
	}
	return public.NewTokenResponse(access, refresh), nil
}

func (h *handler) recordLogin(outcome string) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordLogin(outcome)
	}
}

func (h *handler) recordSignup() {
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordSignup()
	}
}

// health reports whether the database is reachable.
func (h *handler) health(c *gin.Context) {
	if h.deps.DB != nil {
		if err := h.deps.DB.PingContext(c.Request.Context()); err != nil {
			h.deps.Logger.Error("health check failed", slog.String("error", err.Error()))
			c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "ok"})
}
