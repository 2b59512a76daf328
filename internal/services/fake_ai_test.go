package services

import (
	"context"
	"errors"

	"github.com/GabeValerio/famodular/internal/ai"
)

// fakeAI is a canned-response ai.Client for service tests. Setting fail makes
// every call return an error; failOn makes only the matching call fail.
type fakeAI struct {
	identification ai.PlantIdentification
	detected       [][]ai.DetectedItem
	recipe         ai.RecipeDraft
	mealPlan       ai.MealPlanDraft

	fail    bool
	failOn  map[int]bool
	callNum int
}

var errFakeAI = errors.New("fake ai failure")

func (f *fakeAI) IdentifyPlant(ctx context.Context, image ai.Image) (*ai.PlantIdentification, error) {
	if f.fail {
		return nil, errFakeAI
	}
	result := f.identification
	return &result, nil
}

func (f *fakeAI) AnalyzeFoodImage(ctx context.Context, image ai.Image) ([]ai.DetectedItem, error) {
	call := f.callNum
	f.callNum++

	if f.fail || f.failOn[call] {
		return nil, errFakeAI
	}
	if call < len(f.detected) {
		return f.detected[call], nil
	}
	return nil, nil
}

func (f *fakeAI) GenerateRecipe(ctx context.Context, req ai.RecipeRequest) (*ai.RecipeDraft, error) {
	if f.fail {
		return nil, errFakeAI
	}
	result := f.recipe
	return &result, nil
}

func (f *fakeAI) GenerateMealPlan(ctx context.Context, req ai.MealPlanRequest) (*ai.MealPlanDraft, error) {
	if f.fail {
		return nil, errFakeAI
	}
	result := f.mealPlan
	return &result, nil
}
