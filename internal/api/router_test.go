package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/GabeValerio/famodular/internal/app"
	iauth "github.com/GabeValerio/famodular/internal/auth"
	testutil "github.com/GabeValerio/famodular/internal/database/testutil"
	"github.com/GabeValerio/famodular/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret", Issuer: "famodular"})
	require.NoError(t, err)

	store, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8000/media")
	require.NoError(t, err)

	cfg := &app.Config{
		Server: app.ServerConfig{BaseURL: "http://localhost:8000"},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: false},
			Health:     app.HealthConfig{Enabled: true},
		},
	}

	router, err := NewRouter(db, jwtSvc, cfg, nil, store, nil)
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, recorder.Body.String())
	return envelope.Data
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "super-secret",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	data := decodeData(t, recorder)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "ok")
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "flow@example.com")

	recorder := doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "flow@example.com")

	recorder = doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGroupInvitationFlow(t *testing.T) {
	router := newTestRouter(t)

	adminToken := registerAndLogin(t, router, "admin@example.com")
	guestToken := registerAndLogin(t, router, "guest@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/groups", adminToken, gin.H{"name": "Family"})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	group := decodeData(t, recorder)
	groupID, _ := group["id"].(string)
	require.NotEmpty(t, groupID)

	recorder = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/groups/%s/invitations", groupID), adminToken, gin.H{
		"email": "guest@example.com",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	created := decodeData(t, recorder)
	invitation, _ := created["invitation"].(map[string]any)
	shortCode, _ := invitation["shortCode"].(string)
	require.NotEmpty(t, shortCode)

	// Public resolve shows the target group before authentication.
	recorder = doJSON(t, router, http.MethodGet, "/api/invitations/"+shortCode, "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/invitations/accept", guestToken, gin.H{"code": shortCode})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodGet, "/api/groups", guestToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Family")

	// Non-admin cannot issue invitations.
	recorder = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/groups/%s/invitations", groupID), guestToken, gin.H{
		"email": "third@example.com",
	})
	require.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestModuleScoping(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "owner@example.com")
	outsider := registerAndLogin(t, router, "outsider@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/todos", token, gin.H{"title": "water the garden"})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	todo := decodeData(t, recorder)
	todoID, _ := todo["id"].(string)

	recorder = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%s/toggle", todoID), token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	// A personal task is invisible to other users.
	recorder = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%s/toggle", todoID), outsider, nil)
	require.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestAIEndpointsDisabledWithoutClient(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "cook@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/groups", token, gin.H{"name": "Kitchen Crew"})
	require.Equal(t, http.StatusCreated, recorder.Code)
	group := decodeData(t, recorder)
	groupID, _ := group["id"].(string)

	recorder = doJSON(t, router, http.MethodPost, "/api/kitchen/recipes/generate", token, gin.H{"groupId": groupID})
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	require.Contains(t, recorder.Body.String(), "AI_DISABLED")
}

func TestProfileModuleSettings(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "settings@example.com")

	recorder := doJSON(t, router, http.MethodGet, "/api/profile/modules", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeData(t, recorder)
	modules, _ := data["modules"].(map[string]any)
	require.Equal(t, true, modules["calendar"])
	require.Equal(t, false, modules["finance"])

	recorder = doJSON(t, router, http.MethodPut, "/api/profile/modules", token, gin.H{
		"modules": gin.H{"finance": true},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	data = decodeData(t, recorder)
	modules, _ = data["modules"].(map[string]any)
	require.Equal(t, true, modules["finance"])
	require.Equal(t, true, modules["calendar"])

	recorder = doJSON(t, router, http.MethodPut, "/api/profile/modules", token, gin.H{
		"modules": gin.H{"bogus": true},
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
