package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/GabeValerio/famodular/pkg/errors"
	"github.com/GabeValerio/famodular/pkg/metrics"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 30 * time.Second
)

// ErrDisabled signals that no API key is configured.
var ErrDisabled = errors.New("ai: inference disabled, no api key configured")

// Options configures the Gemini-backed client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient implements Client against the Gemini REST API. Prompts ask for
// strict JSON output and the response text is decoded directly into the
// caller's type.
type GeminiClient struct {
	opts       Options
	httpClient *http.Client
}

// NewGeminiClient constructs a GeminiClient from options, applying defaults.
func NewGeminiClient(opts Options) (*GeminiClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrDisabled
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &GeminiClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}, nil
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string `json:"response_mime_type"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate posts a prompt (plus optional image) and decodes the JSON answer
// into out.
func (c *GeminiClient) generate(ctx context.Context, kind, prompt string, image *Image, out any) error {
	parts := []geminiPart{{Text: prompt}}
	if image != nil {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MIMEType: image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}})
	}

	var request geminiRequest
	request.Contents = []struct {
		Parts []geminiPart `json:"parts"`
	}{{Parts: parts}}
	request.GenerationConfig.ResponseMIMEType = "application/json"

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("ai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.opts.BaseURL, "/"), c.opts.Model, c.opts.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.AIRequests.WithLabelValues(kind, "error").Inc()
		return apperrors.ErrExternalService.WithInternal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.AIRequests.WithLabelValues(kind, "error").Inc()
		return apperrors.ErrExternalService.WithInternal(err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.AIRequests.WithLabelValues(kind, "error").Inc()
		return apperrors.ErrExternalService.WithInternal(
			fmt.Errorf("ai: upstream returned %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		metrics.AIRequests.WithLabelValues(kind, "error").Inc()
		return apperrors.ErrExternalService.WithInternal(fmt.Errorf("ai: decode response: %w", err))
	}

	text := firstText(decoded)
	if text == "" {
		metrics.AIRequests.WithLabelValues(kind, "error").Inc()
		return apperrors.ErrExternalService.WithInternal(errors.New("ai: empty response"))
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		metrics.AIRequests.WithLabelValues(kind, "error").Inc()
		return apperrors.ErrExternalService.WithInternal(fmt.Errorf("ai: malformed answer: %w", err))
	}

	metrics.AIRequests.WithLabelValues(kind, "success").Inc()
	return nil
}

func firstText(resp geminiResponse) string {
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// IdentifyPlant asks the model to name the plant in the photo.
func (c *GeminiClient) IdentifyPlant(ctx context.Context, image Image) (*PlantIdentification, error) {
	prompt := `Identify the plant in this photo. Respond with JSON only:
{"species": string, "commonName": string, "wateringIntervalDays": int, "confidence": number between 0 and 1}`

	var result PlantIdentification
	if err := c.generate(ctx, "plant_identify", prompt, &image, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeFoodImage asks the model to list the food items visible in the photo.
func (c *GeminiClient) AnalyzeFoodImage(ctx context.Context, image Image) ([]DetectedItem, error) {
	prompt := `List every distinct food item visible in this photo. Respond with a JSON array only:
[{"name": string, "quantity": number, "unit": string, "category": string}]`

	var items []DetectedItem
	if err := c.generate(ctx, "food_analyze", prompt, &image, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GenerateRecipe asks the model for a recipe using the given ingredients.
func (c *GeminiClient) GenerateRecipe(ctx context.Context, req RecipeRequest) (*RecipeDraft, error) {
	servings := req.Servings
	if servings <= 0 {
		servings = 2
	}

	prompt := fmt.Sprintf(`Create a recipe for %d servings using these ingredients where possible: %s.
Preferences: %s.
Respond with JSON only:
{"title": string, "instructions": string, "servings": int, "prepMinutes": int, "ingredients": [{"name": string, "quantity": number, "unit": string}]}`,
		servings, strings.Join(req.Ingredients, ", "), req.Preferences)

	var draft RecipeDraft
	if err := c.generate(ctx, "recipe_generate", prompt, nil, &draft); err != nil {
		return nil, err
	}
	if draft.Servings <= 0 {
		draft.Servings = servings
	}
	return &draft, nil
}

// GenerateMealPlan asks the model for a multi-day meal plan.
func (c *GeminiClient) GenerateMealPlan(ctx context.Context, req MealPlanRequest) (*MealPlanDraft, error) {
	days := req.Days
	if days <= 0 {
		days = 7
	}

	prompt := fmt.Sprintf(`Create a %d day meal plan using these available ingredients where possible: %s.
Preferences: %s.
Slots are breakfast, lunch, dinner. "day" is a zero-based offset from the plan start.
Respond with JSON only:
{"title": string, "meals": [{"name": string, "slot": string, "day": int, "ingredients": [{"name": string, "quantity": number, "unit": string}]}]}`,
		days, strings.Join(req.Ingredients, ", "), req.Preferences)

	var draft MealPlanDraft
	if err := c.generate(ctx, "mealplan_generate", prompt, nil, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}
