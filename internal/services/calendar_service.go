package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/models"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

// CreateEventInput carries new calendar entry fields. A nil GroupID creates a
// personal event.
type CreateEventInput struct {
	GroupID     *string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	AllDay      bool
	Color       string
}

// UpdateEventInput describes mutable event fields.
type UpdateEventInput struct {
	Title       *string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	AllDay      *bool
	Color       *string
}

// EventRange filters event listings by time window.
type EventRange struct {
	From *time.Time
	To   *time.Time
}

// CalendarService manages calendar-module events.
type CalendarService struct {
	db           *gorm.DB
	gateway      *access.Gateway
	auditService *AuditService
}

// NewCalendarService constructs a CalendarService instance.
func NewCalendarService(db *gorm.DB, gateway *access.Gateway, auditService *AuditService) (*CalendarService, error) {
	if db == nil {
		return nil, errors.New("calendar service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("calendar service: gateway is required")
	}
	return &CalendarService{db: db, gateway: gateway, auditService: auditService}, nil
}

// Create persists a calendar event in the requested scope.
func (s *CalendarService) Create(ctx context.Context, requesterID string, input CreateEventInput) (*models.CalendarEvent, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("event title is required")
	}
	if input.StartsAt.IsZero() {
		return nil, apperrors.NewBadRequest("event start time is required")
	}
	if !input.EndsAt.IsZero() && input.EndsAt.Before(input.StartsAt) {
		return nil, apperrors.NewBadRequest("event end time must not precede its start")
	}

	ownership, err := resolveOwnership(ctx, s.gateway, requesterID, input.GroupID)
	if err != nil {
		return nil, err
	}

	event := &models.CalendarEvent{
		Ownership:   ownership,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		AllDay:      input.AllDay,
		Color:       strings.TrimSpace(input.Color),
		CreatedBy:   requesterID,
	}

	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &requesterID,
		GroupID:  ownership.GroupID,
		Action:   "calendar.create",
		Resource: event.ID,
		Result:   "success",
	})

	return event, nil
}

// GetByID loads an event after authorizing the requester for its scope.
func (s *CalendarService) GetByID(ctx context.Context, requesterID, eventID string) (*models.CalendarEvent, error) {
	ctx = ensureContext(ctx)

	var event models.CalendarEvent
	err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireScope(ctx, requesterID, event.Ownership); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListForGroup returns group-scoped events inside the optional window.
func (s *CalendarService) ListForGroup(ctx context.Context, requesterID, groupID string, window EventRange) ([]models.CalendarEvent, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("group_id = ?", groupID)
	return s.listEvents(applyEventRange(query, window))
}

// ListPersonal returns the requester's personal events inside the window.
func (s *CalendarService) ListPersonal(ctx context.Context, requesterID string, window EventRange) ([]models.CalendarEvent, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Where("user_id = ?", requesterID)
	return s.listEvents(applyEventRange(query, window))
}

func applyEventRange(query *gorm.DB, window EventRange) *gorm.DB {
	if window.From != nil {
		query = query.Where("starts_at >= ?", *window.From)
	}
	if window.To != nil {
		query = query.Where("starts_at < ?", *window.To)
	}
	return query
}

func (s *CalendarService) listEvents(query *gorm.DB) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	if err := query.Order("starts_at ASC").Find(&events).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return events, nil
}

// Update mutates an event the requester can access.
func (s *CalendarService) Update(ctx context.Context, requesterID, eventID string, input UpdateEventInput) (*models.CalendarEvent, error) {
	ctx = ensureContext(ctx)

	event, err := s.GetByID(ctx, requesterID, eventID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if title := trimPtr(input.Title); title != nil {
		if *title == "" {
			return nil, apperrors.NewBadRequest("event title must not be empty")
		}
		updates["title"] = *title
	}
	if desc := trimPtr(input.Description); desc != nil {
		updates["description"] = *desc
	}
	if input.StartsAt != nil {
		updates["starts_at"] = *input.StartsAt
	}
	if input.EndsAt != nil {
		updates["ends_at"] = *input.EndsAt
	}
	if input.AllDay != nil {
		updates["all_day"] = *input.AllDay
	}
	if color := trimPtr(input.Color); color != nil {
		updates["color"] = *color
	}
	if len(updates) == 0 {
		return event, nil
	}

	if err := s.db.WithContext(ctx).Model(event).Updates(updates).Error; err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return s.GetByID(ctx, requesterID, eventID)
}

// Delete removes an event the requester can access.
func (s *CalendarService) Delete(ctx context.Context, requesterID, eventID string) error {
	ctx = ensureContext(ctx)

	event, err := s.GetByID(ctx, requesterID, eventID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(event).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &requesterID,
		GroupID:  event.GroupID,
		Action:   "calendar.delete",
		Resource: event.ID,
		Result:   "success",
	})

	return nil
}
