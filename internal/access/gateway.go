package access

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
	"github.com/GabeValerio/famodular/pkg/metrics"
)

// Gateway is the group-scoped access gateway: the single authorization layer
// between a caller identity and the persistence layer. Every module service
// routes its membership and ownership decisions through here, so the rule set
// is uniform: membership checks always require the active flag.
//
// The gateway never caches decisions; each call re-validates against the
// store so a deactivated membership takes effect on the very next request.
type Gateway struct {
	db *gorm.DB
}

// NewGateway constructs a Gateway backed by the provided database.
func NewGateway(db *gorm.DB) (*Gateway, error) {
	if db == nil {
		return nil, errors.New("access gateway: db is required")
	}
	return &Gateway{db: db}, nil
}

// RequireMember succeeds only when an active membership row exists for
// (userID, groupID). It must run before any group-scoped read or write,
// including groups discovered indirectly through a resource's foreign keys.
func (g *Gateway) RequireMember(ctx context.Context, userID, groupID string) (*models.Membership, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" || groupID == "" {
		return nil, apperrors.NewBadRequest("user id and group id are required")
	}

	var membership models.Membership
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ? AND is_active = ?", userID, groupID, true).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AccessChecks.WithLabelValues(models.ScopeGroup, "denied").Inc()
		return nil, apperrors.ErrForbidden
	}
	if err != nil {
		metrics.AccessChecks.WithLabelValues(models.ScopeGroup, "error").Inc()
		return nil, apperrors.NewStorageFailure(err)
	}

	metrics.AccessChecks.WithLabelValues(models.ScopeGroup, "allowed").Inc()
	return &membership, nil
}

// RequireAdmin is RequireMember plus an admin-role requirement. It guards
// group settings mutation, member management, and invitation issuance.
func (g *Gateway) RequireAdmin(ctx context.Context, userID, groupID string) (*models.Membership, error) {
	membership, err := g.RequireMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if !membership.IsAdmin() {
		metrics.AccessChecks.WithLabelValues(models.ScopeGroup, "denied").Inc()
		return nil, apperrors.ErrAdminRequired
	}

	return membership, nil
}

// RequireOwner enforces the personal scope: the resource owner must be the
// caller.
func (g *Gateway) RequireOwner(userID, ownerID string) error {
	userID = strings.TrimSpace(userID)
	ownerID = strings.TrimSpace(ownerID)
	if userID == "" || ownerID == "" {
		return apperrors.NewBadRequest("user id and owner id are required")
	}

	if userID != ownerID {
		metrics.AccessChecks.WithLabelValues(models.ScopePersonal, "denied").Inc()
		return apperrors.ErrForbidden
	}

	metrics.AccessChecks.WithLabelValues(models.ScopePersonal, "allowed").Inc()
	return nil
}

// RequireScope authorizes access to a resource carrying an Ownership marker,
// dispatching to the group or personal rule. A record that names neither or
// both owners is malformed and rejected outright.
func (g *Gateway) RequireScope(ctx context.Context, userID string, own models.Ownership) error {
	switch own.Scope() {
	case models.ScopeGroup:
		_, err := g.RequireMember(ctx, userID, *own.GroupID)
		return err
	case models.ScopePersonal:
		return g.RequireOwner(userID, *own.UserID)
	default:
		return apperrors.NewBadRequest("resource must belong to exactly one of a group or a user")
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
