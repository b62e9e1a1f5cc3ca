package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-jobswipe-backend/internal/delivery/http/response"
	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/auth"
	"go-jobswipe-backend/pkg/logger"
	"go-jobswipe-backend/pkg/security"
)

// AuthCookieName is the cookie the web client stores its access token in.
const AuthCookieName = "auth_token"

// TokenSource reports where the bearer credential was found.
type TokenSource int

const (
	TokenNone TokenSource = iota
	TokenHeader
	TokenCookie
	TokenQuery
)

// BearerToken extracts the credential from the Authorization header, then the auth cookie.
// allowQuery additionally accepts ?access_token=, used only by the websocket upgrade
// because browsers cannot set headers on it.
func BearerToken(c *gin.Context, allowQuery bool) (string, TokenSource) {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), TokenHeader
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie, TokenCookie
	}
	if allowQuery {
		if q := c.Query("access_token"); q != "" {
			return q, TokenQuery
		}
	}
	return "", TokenNone
}

// Authenticator resolves a bearer token into a known user.
type Authenticator struct {
	verifier *auth.Verifier
	users    domain.UserRepository
	audit    *security.SecurityLogger
}

func NewAuthenticator(verifier *auth.Verifier, users domain.UserRepository, audit *security.SecurityLogger) *Authenticator {
	return &Authenticator{verifier: verifier, users: users, audit: audit}
}

// Resolve validates the token and loads the user. The role always comes from the database,
// never from the token claims.
func (a *Authenticator) Resolve(c *gin.Context, token string, realtime bool) (*domain.User, error) {
	claims, err := a.verifier.Verify(token)
	if err != nil {
		a.audit.LogTokenRejected(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), err.Error(), realtime)
		return nil, err
	}

	user, err := a.users.GetByID(c.Request.Context(), claims.Subject)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Log.Error("Auth user lookup failed", "error", err)
		}
		return nil, err
	}
	if user.Email == "" {
		user.Email = claims.Email
	}
	return user, nil
}

// AuthMiddleware rejects requests without a valid token for a known user
// and stores the identity on the gin context.
func AuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := BearerToken(c, false)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		user, err := a.Resolve(c, token, false)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, domain.ErrNotFound) {
				msg = "User not found"
			}
			response.Error(c, http.StatusUnauthorized, msg, nil)
			c.Abort()
			return
		}

		SetIdentity(c, user)
		c.Next()
	}
}

func SetIdentity(c *gin.Context, user *domain.User) {
	c.Set(string(domain.KeyUserID), user.ID)
	c.Set(string(domain.KeyUserEmail), user.Email)
	c.Set(string(domain.KeyUserRole), user.Role)
}

// RequireRole lets only the listed roles through.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(string(domain.KeyUserRole))] {
			response.Error(c, http.StatusForbidden, "Access denied for your role", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
