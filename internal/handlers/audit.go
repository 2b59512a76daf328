package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// AuditHandler exposes read access to the audit trail.
type AuditHandler struct {
	audit   *services.AuditService
	gateway *access.Gateway
}

// NewAuditHandler configures an audit handler with required services.
func NewAuditHandler(audit *services.AuditService, gateway *access.Gateway) *AuditHandler {
	return &AuditHandler{audit: audit, gateway: gateway}
}

// ListForGroup returns recent audit entries for the group. Requires admin.
func (h *AuditHandler) ListForGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	groupID := c.Param("groupID")
	if _, err := h.gateway.RequireAdmin(requestContext(c), userID, groupID); err != nil {
		response.Error(c, err)
		return
	}

	logs, err := h.audit.ListForGroup(requestContext(c), groupID, parseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, logs)
}
