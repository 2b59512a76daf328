package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/middleware"
	appErrors "github.com/GabeValerio/famodular/pkg/errors"
	"github.com/GabeValerio/famodular/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID extracts the authenticated user from the request context.
// When absent, an unauthorized response is written and false is returned.
func currentUserID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
	if id == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return id, true
}
