package services

import (
	"context"
	"testing"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maleRows() []models.PredictedOption {
	rows := []models.PredictedOption{
		{Institute: "IIT Delhi", Probability: "High", Gender: "Male", ClosingRankValue: 1200},
		{Institute: "IIT Bombay", Probability: "High", Gender: "Male", ClosingRankValue: 900},
		{Institute: "NIT Trichy", Probability: "Low", Gender: "Male", ClosingRankValue: 4000},
		{Institute: "NIT Warangal", Probability: "Low", Gender: "Male", ClosingRankValue: 5200},
		{Institute: "NIT Surathkal", Probability: "Low", Gender: "Male", ClosingRankValue: 4700},
	}
	return rows
}

func predictRequest(userID string) PredictRequest {
	percentile := 98.5
	return PredictRequest{
		UserID: userID,
		Input: models.PredictionRequest{
			Percentile: &percentile,
			Category:   "OPEN",
			Gender:     "Male",
			HomeState:  "Delhi",
		},
	}
}

func TestPredictEndToEndGenderFilterEmptiesView(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.prediction = &models.PredictionResponse{
		Predictions:          maleRows(),
		HomeStatePredictions: maleRows()[:2],
		CalculatedRank:       15234,
	}
	service := NewPredictionService(upstream, nil, NewViewStateStore(), nil)
	ctx := context.Background()

	view, err := service.Predict(ctx, predictRequest("u1"))
	require.NoError(t, err)

	assert.Equal(t, []models.TabCount{{Tab: models.TierHigh, Count: 2}, {Tab: models.TierLow, Count: 3}}, view.All.Tiers)
	assert.Equal(t, models.TierHigh, view.All.ActiveTier)
	assert.False(t, view.All.Empty)
	require.Len(t, view.All.Rows, 2)
	assert.Equal(t, "IIT Delhi", view.All.Rows[0].Institute, "High keeps upstream order")
	assert.False(t, view.GenderFilterVisible)
	assert.Equal(t, 15234.0, view.CalculatedRank)

	// Low is sorted by closing rank, highest first
	view, err = service.SelectTier(ctx, "u1", "", PredictionListAll, "low")
	require.NoError(t, err)
	require.Len(t, view.All.Rows, 3)
	assert.Equal(t, []string{"NIT Warangal", "NIT Surathkal", "NIT Trichy"},
		[]string{view.All.Rows[0].Institute, view.All.Rows[1].Institute, view.All.Rows[2].Institute})

	view, err = service.Refilter(ctx, "u1", "", "Female-only")
	require.NoError(t, err)
	assert.Equal(t, models.GenderModeFemaleOnly, view.GenderFilter)
	for _, list := range []models.TierView{view.All, view.HomeState} {
		assert.True(t, list.Empty)
		assert.Empty(t, list.Tiers)
		assert.Empty(t, list.Rows)
		assert.Equal(t, models.Tab(""), list.ActiveTier)
	}

	// back to All restores the first non-empty tier
	view, err = service.Refilter(ctx, "u1", "", "All")
	require.NoError(t, err)
	assert.Equal(t, models.TierHigh, view.All.ActiveTier)
}

func TestPredictKeepsSelectionAcrossRegroup(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.prediction = &models.PredictionResponse{Predictions: maleRows()}
	service := NewPredictionService(upstream, nil, NewViewStateStore(), nil)
	ctx := context.Background()

	_, err := service.Predict(ctx, predictRequest("u1"))
	require.NoError(t, err)
	_, err = service.SelectTier(ctx, "u1", "", PredictionListAll, "Low")
	require.NoError(t, err)

	view, err := service.Predict(ctx, predictRequest("u1"))
	require.NoError(t, err)
	assert.Equal(t, models.TierLow, view.All.ActiveTier)
}

func TestPredictUserSelectsEmptyTier(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.prediction = &models.PredictionResponse{Predictions: maleRows()}
	service := NewPredictionService(upstream, nil, NewViewStateStore(), nil)
	ctx := context.Background()

	_, err := service.Predict(ctx, predictRequest("u1"))
	require.NoError(t, err)

	view, err := service.SelectTier(ctx, "u1", "", PredictionListAll, "Medium")
	require.NoError(t, err)
	assert.Equal(t, models.TierMedium, view.All.ActiveTier)
	assert.Empty(t, view.All.Rows)

	_, err = service.SelectTier(ctx, "u1", "", PredictionListAll, "Very High")
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryValidation))
}

func TestPredictLockedProductWithholdsRows(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.prediction = &models.PredictionResponse{Predictions: maleRows()}
	entitlements := NewEntitlementService(testCatalog(), NewAccountStore(), upstream)
	service := NewPredictionService(upstream, entitlements, NewViewStateStore(), nil)

	req := predictRequest("u1")
	req.ProductID = "rank-predictor"
	view, err := service.Predict(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, view.Locked)
	assert.NotEmpty(t, view.All.Tiers, "counts stay visible")
	assert.Empty(t, view.All.Rows)
}

func TestPredictValidation(t *testing.T) {
	service := NewPredictionService(newFakeUpstream(), nil, NewViewStateStore(), nil)
	ctx := context.Background()

	req := predictRequest("u1")
	req.Input.Percentile = nil
	_, err := service.Predict(ctx, req)
	se, ok := shared.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorCategoryValidation, se.Category)

	bad := 101.0
	req = predictRequest("u1")
	req.Input.Percentile = &bad
	_, err = service.Predict(ctx, req)
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryValidation))

	req = predictRequest("u1")
	req.Input.HomeState = " "
	_, err = service.Predict(ctx, req)
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryValidation))

	_, err = service.Refilter(ctx, "nobody", "", "All")
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryNotFound))
}

func TestPredictUpstreamFailure(t *testing.T) {
	service := NewPredictionService(newFakeUpstream(), nil, NewViewStateStore(), nil)

	_, err := service.Predict(context.Background(), predictRequest("u1"))
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryRemoteFetch))
	assert.True(t, shared.IsRetryableError(err))
}
