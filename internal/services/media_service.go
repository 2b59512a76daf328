package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/models"
	"github.com/GabeValerio/famodular/internal/storage"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
	"github.com/GabeValerio/famodular/pkg/metrics"
)

// MaxMediaBytes is the hard ceiling on decoded upload size. An upload of
// exactly this many bytes is accepted; one byte more is rejected.
const MaxMediaBytes = 10 * 1024 * 1024

// ErrMediaTooLarge rejects uploads past the size ceiling.
var ErrMediaTooLarge = apperrors.New("MEDIA_TOO_LARGE", "Upload exceeds the 10 MiB limit", http.StatusRequestEntityTooLarge)

// ErrUnsupportedMedia rejects uploads outside the image/video allowlist.
var ErrUnsupportedMedia = apperrors.New("UNSUPPORTED_MEDIA_TYPE", "Only image and video uploads are accepted", http.StatusUnsupportedMediaType)

// allowedMediaTypes maps accepted content types to their file extension.
var allowedMediaTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
}

// UploadMediaInput carries one base64-encoded upload.
type UploadMediaInput struct {
	GroupID     *string
	FileName    string
	ContentType string
	DataBase64  string
}

// MediaService validates, decodes, and stores media uploads.
type MediaService struct {
	db      *gorm.DB
	gateway *access.Gateway
	store   storage.Store
}

// NewMediaService constructs a MediaService instance.
func NewMediaService(db *gorm.DB, gateway *access.Gateway, store storage.Store) (*MediaService, error) {
	if db == nil {
		return nil, errors.New("media service: db is required")
	}
	if gateway == nil {
		return nil, errors.New("media service: gateway is required")
	}
	if store == nil {
		return nil, errors.New("media service: store is required")
	}
	return &MediaService{db: db, gateway: gateway, store: store}, nil
}

// Upload decodes, validates, and persists one media object in the requested
// scope.
func (s *MediaService) Upload(ctx context.Context, requesterID string, input UploadMediaInput) (*models.MediaObject, error) {
	ctx = ensureContext(ctx)

	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	ext, ok := allowedMediaTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedMedia
	}

	encoded := strings.TrimSpace(input.DataBase64)
	if encoded == "" {
		return nil, apperrors.NewBadRequest("upload data is required")
	}
	// DecodedLen can overshoot the real size by up to two padding bytes.
	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxMediaBytes+2 {
		return nil, ErrMediaTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.NewBadRequest("upload data is not valid base64")
	}
	if len(data) > MaxMediaBytes {
		return nil, ErrMediaTooLarge
	}
	if len(data) == 0 {
		return nil, apperrors.NewBadRequest("upload data is empty")
	}

	ownership, err := resolveOwnership(ctx, s.gateway, requesterID, input.GroupID)
	if err != nil {
		return nil, err
	}

	key := mediaKey(ownership, ext)
	url, err := s.store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	object := &models.MediaObject{
		Ownership:   ownership,
		Key:         key,
		URL:         url,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		FileName:    path.Base(strings.TrimSpace(input.FileName)),
		UploadedBy:  requesterID,
	}

	if err := s.db.WithContext(ctx).Create(object).Error; err != nil {
		// Roll back the blob so storage and metadata stay consistent.
		_ = s.store.Delete(ctx, key)
		return nil, apperrors.NewStorageFailure(err)
	}

	metrics.MediaUploadBytes.Observe(float64(len(data)))
	return object, nil
}

func mediaKey(own models.Ownership, ext string) string {
	id := uuid.NewString()
	if own.GroupID != nil {
		return fmt.Sprintf("groups/%s/%s%s", *own.GroupID, id, ext)
	}
	return fmt.Sprintf("users/%s/%s%s", *own.UserID, id, ext)
}

// GetByID loads a media object after authorizing the requester.
func (s *MediaService) GetByID(ctx context.Context, requesterID, mediaID string) (*models.MediaObject, error) {
	ctx = ensureContext(ctx)

	var object models.MediaObject
	err := s.db.WithContext(ctx).First(&object, "id = ?", mediaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if err := s.gateway.RequireScope(ctx, requesterID, object.Ownership); err != nil {
		return nil, err
	}
	return &object, nil
}

// ListForGroup returns a group's media objects, newest first.
func (s *MediaService) ListForGroup(ctx context.Context, requesterID, groupID string) ([]models.MediaObject, error) {
	ctx = ensureContext(ctx)

	if _, err := s.gateway.RequireMember(ctx, requesterID, groupID); err != nil {
		return nil, err
	}

	var objects []models.MediaObject
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&objects).Error
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return objects, nil
}

// Delete removes a media object and its stored bytes.
func (s *MediaService) Delete(ctx context.Context, requesterID, mediaID string) error {
	ctx = ensureContext(ctx)

	object, err := s.GetByID(ctx, requesterID, mediaID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(object).Error; err != nil {
		return apperrors.NewStorageFailure(err)
	}

	// The row is gone; a dangling blob is preferable to a dangling row.
	_ = s.store.Delete(ctx, object.Key)
	return nil
}
