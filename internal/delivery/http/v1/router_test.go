package v1_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"go-jobswipe-backend/config"
	"go-jobswipe-backend/internal/delivery/http/middleware"
	v1 "go-jobswipe-backend/internal/delivery/http/v1"
	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/auth"
)

type noUsers struct{}

func (noUsers) GetByID(context.Context, string) (*domain.User, error) { return nil, domain.ErrNotFound }

func TestRouterAccessLogHidesQueryToken(t *testing.T) {
	var logs bytes.Buffer
	prev := gin.DefaultWriter
	gin.DefaultWriter = &logs
	t.Cleanup(func() { gin.DefaultWriter = prev })

	r := v1.NewRouter(v1.RouterDeps{
		Authenticator: middleware.NewAuthenticator(auth.NewVerifier("secret", nil), noUsers{}, nil),
		Origins:       middleware.NewOriginPolicy("http://localhost:3000", false),
		Config:        &config.Config{MessageRateLimit: 30, RateLimitWindowSeconds: 60},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ws?access_token=SECRET.JWT.VALUE&room=4", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, logs.String(), "/v1/ws?")
	assert.Contains(t, logs.String(), "access_token=REDACTED")
	assert.Contains(t, logs.String(), "room=4")
	assert.NotContains(t, logs.String(), "SECRET.JWT.VALUE")
}

func TestRedactQuery(t *testing.T) {
	assert.Equal(t, "/v1/chats", middleware.RedactQuery("/v1/chats"))
	assert.Equal(t, "/v1/chats?page=2", middleware.RedactQuery("/v1/chats?page=2"))
	assert.Equal(t, "/v1/ws?access_token=REDACTED", middleware.RedactQuery("/v1/ws?access_token=abc"))
	assert.Equal(t, "/v1/ws?<unparsed>", middleware.RedactQuery("/v1/ws?access_token=%zz"))
}
