package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

// Context keys set by AuthMiddleware
const (
	ContextActor  = "actor"
	ContextUserID = "user_id"
)

var (
	ErrMissingToken    = errors.New("missing bearer token")
	ErrMissingIdentity = errors.New("missing user identity")
)

// Identity is who the request says it comes from, before a role is resolved
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// Authenticator extracts the caller's identity from a request
type Authenticator interface {
	Authenticate(r *http.Request) (Identity, error)
}

// TokenParser verifies a JWT. *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

func NewCasdoorClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application)
}

// CasdoorAuthenticator accepts Casdoor-issued bearer tokens. Browsers cannot
// set headers on websocket upgrades, so the token may also come in the
// access_token query parameter.
type CasdoorAuthenticator struct {
	parser TokenParser
}

func NewCasdoorAuthenticator(parser TokenParser) *CasdoorAuthenticator {
	return &CasdoorAuthenticator{parser: parser}
}

func (a *CasdoorAuthenticator) Authenticate(r *http.Request) (Identity, error) {
	token := bearerToken(r)
	if token == "" {
		return Identity{}, ErrMissingToken
	}
	claims, err := a.parser.ParseJwtToken(token)
	if err != nil {
		return Identity{}, err
	}

	identity := Identity{
		UserID:      claims.Id,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}
	if identity.UserID == "" {
		identity.UserID = claims.Subject
	}
	if identity.DisplayName == "" {
		identity.DisplayName = claims.Name
	}
	if identity.UserID == "" {
		return Identity{}, ErrMissingIdentity
	}
	return identity, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

// HeaderAuthenticator trusts identity headers set by an upstream gateway.
// Only for development or deployments behind an authenticating proxy.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (Identity, error) {
	identity := Identity{
		UserID:      r.Header.Get("X-User-ID"),
		Email:       r.Header.Get("X-User-Email"),
		DisplayName: r.Header.Get("X-User-Name"),
	}
	if identity.UserID == "" {
		return Identity{}, ErrMissingIdentity
	}
	return identity, nil
}

// AuthMiddleware authenticates the caller, resolves the role from the
// teacher allow-list and stores the resulting services.Actor on the context.
func AuthMiddleware(auth Authenticator, identity services.IdentityService, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, err := auth.Authenticate(c.Request)
		if err != nil {
			utils.GetLoggerFromContext(c, logger).Debug("Authentication failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		ctx := c.Request.Context()
		role, err := identity.ResolveRole(ctx, who.Email)
		if err != nil {
			utils.GetLoggerFromContext(c, logger).LogError(err, "Failed to resolve role", "user_id", who.UserID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Internal server error",
				Code:    CodeInternal,
			})
			return
		}

		actor := services.Actor{
			UserID:      who.UserID,
			Email:       who.Email,
			DisplayName: who.DisplayName,
			Role:        role,
		}
		if _, err := identity.EnsureProfile(ctx, actor); err != nil {
			utils.GetLoggerFromContext(c, logger).Warn("Failed to store user profile", "user_id", actor.UserID, "error", err)
		}

		c.Set(ContextActor, actor)
		c.Set(ContextUserID, actor.UserID)
		c.Next()
	}
}

func ActorFromContext(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok && actor.UserID != ""
}
