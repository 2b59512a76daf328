package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFakeGemini(t *testing.T, answer string, status int) *GeminiClient {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NotEmpty(t, r.URL.Query().Get("key"))

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		response := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": answer}},
				},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(server.Close)

	client, err := NewGeminiClient(Options{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(Options{})
	require.ErrorIs(t, err, ErrDisabled)
}

func TestIdentifyPlant(t *testing.T) {
	client := newFakeGemini(t, `{"species":"Monstera deliciosa","commonName":"Swiss cheese plant","wateringIntervalDays":7,"confidence":0.93}`, http.StatusOK)

	result, err := client.IdentifyPlant(context.Background(), Image{MIMEType: "image/jpeg", Data: []byte("fake")})
	require.NoError(t, err)
	require.Equal(t, "Monstera deliciosa", result.Species)
	require.Equal(t, 7, result.WateringIntervalDays)
}

func TestAnalyzeFoodImage(t *testing.T) {
	client := newFakeGemini(t, `[{"name":"milk","quantity":1,"unit":"l","category":"dairy"},{"name":"eggs","quantity":6,"unit":"pcs","category":"dairy"}]`, http.StatusOK)

	items, err := client.AnalyzeFoodImage(context.Background(), Image{MIMEType: "image/png", Data: []byte("fake")})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "milk", items[0].Name)
}

func TestGenerateRecipeDefaultsServings(t *testing.T) {
	client := newFakeGemini(t, `{"title":"Omelette","instructions":"Whisk and fry.","servings":0,"prepMinutes":10,"ingredients":[{"name":"eggs","quantity":3,"unit":"pcs"}]}`, http.StatusOK)

	draft, err := client.GenerateRecipe(context.Background(), RecipeRequest{Ingredients: []string{"eggs"}})
	require.NoError(t, err)
	require.Equal(t, "Omelette", draft.Title)
	require.Equal(t, 2, draft.Servings)
}

func TestUpstreamFailureSurfacesAsExternalError(t *testing.T) {
	client := newFakeGemini(t, "", http.StatusBadGateway)

	_, err := client.GenerateMealPlan(context.Background(), MealPlanRequest{Days: 3})
	require.Error(t, err)
}

func TestMalformedAnswerSurfacesAsError(t *testing.T) {
	client := newFakeGemini(t, "this is not json", http.StatusOK)

	_, err := client.IdentifyPlant(context.Background(), Image{MIMEType: "image/jpeg", Data: []byte("x")})
	require.Error(t, err)
}
