package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GabeValerio/famodular/internal/access"
	"github.com/GabeValerio/famodular/internal/database/testutil"
	"github.com/GabeValerio/famodular/internal/storage"
	apperrors "github.com/GabeValerio/famodular/pkg/errors"
)

func newMediaService(t *testing.T) *MediaService {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	gw, err := access.NewGateway(db)
	require.NoError(t, err)

	store, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8080/media")
	require.NoError(t, err)

	svc, err := NewMediaService(db, gw, store)
	require.NoError(t, err)
	return svc
}

func encodePayload(size int) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xAB}, size))
}

func TestUploadSizeBoundary(t *testing.T) {
	svc := newMediaService(t)
	ctx := context.Background()

	user, _ := seedGroupMember(t, svc.db, "uploader@example.com")

	// Exactly at the ceiling is accepted.
	object, err := svc.Upload(ctx, user.ID, UploadMediaInput{
		ContentType: "image/png",
		DataBase64:  encodePayload(MaxMediaBytes),
	})
	require.NoError(t, err)
	require.EqualValues(t, MaxMediaBytes, object.SizeBytes)

	// One byte over is rejected.
	_, err = svc.Upload(ctx, user.ID, UploadMediaInput{
		ContentType: "image/png",
		DataBase64:  encodePayload(MaxMediaBytes + 1),
	})
	require.ErrorIs(t, err, ErrMediaTooLarge)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc := newMediaService(t)
	ctx := context.Background()

	user, _ := seedGroupMember(t, svc.db, "uploader@example.com")

	_, err := svc.Upload(ctx, user.ID, UploadMediaInput{
		ContentType: "application/pdf",
		DataBase64:  encodePayload(128),
	})
	require.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = svc.Upload(ctx, user.ID, UploadMediaInput{
		ContentType: "image/png",
		DataBase64:  "not-base64!!!",
	})
	require.Error(t, err)
}

func TestUploadScoping(t *testing.T) {
	svc := newMediaService(t)
	ctx := context.Background()

	member, group := seedGroupMember(t, svc.db, "member@example.com")
	outsider, _ := seedGroupMember(t, svc.db, "outsider@example.com")

	// Group uploads demand membership.
	_, err := svc.Upload(ctx, outsider.ID, UploadMediaInput{
		GroupID:     &group.ID,
		ContentType: "video/mp4",
		DataBase64:  encodePayload(256),
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	object, err := svc.Upload(ctx, member.ID, UploadMediaInput{
		GroupID:     &group.ID,
		ContentType: "video/mp4",
		DataBase64:  encodePayload(256),
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, outsider.ID, object.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	listed, err := svc.ListForGroup(ctx, member.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.Delete(ctx, member.ID, object.ID))
	_, err = svc.GetByID(ctx, member.ID, object.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
