package services

import (
	"context"
	"strings"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/models"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	_ = audit.Log(ctx, entry)
}

// resolveOwnership turns an optional group identifier into an Ownership
// marker for a new module resource. A group identifier demands an active
// membership; its absence makes the resource personal to the requester.
func resolveOwnership(ctx context.Context, gw *access.Gateway, requesterID string, groupID *string) (models.Ownership, error) {
	if id := trimPtr(groupID); id != nil && *id != "" {
		if _, err := gw.RequireMember(ctx, requesterID, *id); err != nil {
			return models.Ownership{}, err
		}
		return models.Ownership{GroupID: id}, nil
	}

	owner := strings.TrimSpace(requesterID)
	return models.Ownership{UserID: &owner}, nil
}
