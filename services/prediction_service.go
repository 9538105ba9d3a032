package services

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/sirupsen/logrus"
)

const predictionServiceName = "Prediction_Service"

// View keys for the two prediction lists
const (
	PredictionListAll       = "all"
	PredictionListHomeState = "home_state"
)

// Predictor is the remote rank predictor
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest, token string) (*models.PredictionResponse, error)
}

// PredictRequest is one predictor form submission
type PredictRequest struct {
	UserID       string
	Token        string
	ProductID    string
	GenderFilter string
	Input        models.PredictionRequest
}

type lastPrediction struct {
	input     models.PredictionRequest
	response  models.PredictionResponse
	productID string
	mode      models.GenderMode
	storedAt  time.Time
}

// PredictionService runs the predictor pipeline: gender filter, tier grouping,
// closing-rank sort for Medium and Low, then the selection correction rule.
type PredictionService struct {
	predictor    Predictor
	entitlements *EntitlementService
	views        *ViewStateStore
	metrics      *shared.ServiceMetrics
	logger       *logrus.Entry

	mutex sync.RWMutex
	last  map[string]*lastPrediction
}

// NewPredictionService creates a prediction service. entitlements may be nil
// when the predictor output is not gated.
func NewPredictionService(predictor Predictor, entitlements *EntitlementService, views *ViewStateStore, metrics *shared.ServiceMetrics) *PredictionService {
	if metrics == nil {
		metrics = shared.NewServiceMetrics(predictionServiceName)
	}
	return &PredictionService{
		predictor:    predictor,
		entitlements: entitlements,
		views:        views,
		metrics:      metrics,
		logger:       logrus.WithField("component", "PredictionService"),
		last:         make(map[string]*lastPrediction),
	}
}

// ValidatePredictionRequest checks the form input before anything is sent
func ValidatePredictionRequest(req models.PredictionRequest) error {
	const op = "validate"
	switch {
	case req.Percentile == nil && req.Rank == nil:
		return shared.NewValidationError(predictionServiceName, op, "percentile", "Enter a percentile or a rank")
	case req.Percentile != nil && (math.IsNaN(*req.Percentile) || *req.Percentile < 0 || *req.Percentile > 100):
		return shared.NewValidationError(predictionServiceName, op, "percentile", "Percentile must be between 0 and 100")
	case req.Rank != nil && *req.Rank <= 0:
		return shared.NewValidationError(predictionServiceName, op, "rank", "Rank must be a positive number")
	case strings.TrimSpace(req.Category) == "":
		return shared.NewValidationError(predictionServiceName, op, "category", "Category is required")
	case strings.TrimSpace(req.Gender) == "":
		return shared.NewValidationError(predictionServiceName, op, "gender", "Gender is required")
	case strings.TrimSpace(req.HomeState) == "":
		return shared.NewValidationError(predictionServiceName, op, "home_state", "Home state is required")
	}
	return nil
}

// TierBuckets runs the synchronous part of the pipeline over rows
func TierBuckets(rows []models.PredictedOption, mode models.GenderMode) Buckets[models.PredictedOption] {
	filtered := FilterByGender(rows, mode)
	return sortTiers(Group(filtered, models.TierTabs(), ClassifyOption))
}

// Predict validates the input, calls the predictor and derives the view
func (s *PredictionService) Predict(ctx context.Context, req PredictRequest) (*models.PredictionView, error) {
	start := time.Now()
	if err := ValidatePredictionRequest(req.Input); err != nil {
		return nil, err
	}

	response, err := s.predictor.Predict(ctx, req.Input, req.Token)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		return nil, err
	}

	mode := ParseGenderMode(req.GenderFilter)
	s.mutex.Lock()
	s.last[req.UserID] = &lastPrediction{
		input:     req.Input,
		response:  *response,
		productID: req.ProductID,
		mode:      mode,
		storedAt:  time.Now(),
	}
	s.mutex.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":          req.UserID,
		"predictions":      len(response.Predictions),
		"home_predictions": len(response.HomeStatePredictions),
	}).Debug("Prediction received")

	view, err := s.regroup(ctx, req.UserID, req.Token)
	s.metrics.RecordRequest(err == nil, time.Since(start))
	return view, err
}

// Refilter re-runs the pipeline over the user's last response with a new gender mode
func (s *PredictionService) Refilter(ctx context.Context, userID, token, rawMode string) (*models.PredictionView, error) {
	s.mutex.Lock()
	last, ok := s.last[userID]
	if ok {
		last.mode = ParseGenderMode(rawMode)
	}
	s.mutex.Unlock()

	if !ok {
		return nil, noPredictionError("refilter")
	}
	return s.regroup(ctx, userID, token)
}

// SelectTier records a tier click on one of the two lists
func (s *PredictionService) SelectTier(ctx context.Context, userID, token, list, rawTier string) (*models.PredictionView, error) {
	tier := Classify(rawTier, models.TierTabs())
	if tier == Unclassified {
		return nil, shared.NewValidationError(predictionServiceName, "select_tier", "tier", "Unknown tier "+strings.TrimSpace(rawTier))
	}
	if list != PredictionListHomeState {
		list = PredictionListAll
	}

	last, ok := s.snapshot(userID)
	if !ok {
		return nil, noPredictionError("select_tier")
	}
	s.views.Select(userID, "predict:"+list, tier)
	return s.render(ctx, userID, token, last)
}

// Forget drops cached predictions stored before cutoff
func (s *PredictionService) Forget(cutoff time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for userID, last := range s.last {
		if last.storedAt.Before(cutoff) {
			delete(s.last, userID)
			removed++
		}
	}
	return removed
}

func (s *PredictionService) snapshot(userID string) (lastPrediction, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	last, ok := s.last[userID]
	if !ok {
		return lastPrediction{}, false
	}
	return *last, true
}

// regroup applies the correction rule to both lists, then renders
func (s *PredictionService) regroup(ctx context.Context, userID, token string) (*models.PredictionView, error) {
	last, ok := s.snapshot(userID)
	if !ok {
		return nil, noPredictionError("regroup")
	}
	s.views.Regroup(userID, "predict:"+PredictionListAll, TierBuckets(last.response.Predictions, last.mode))
	s.views.Regroup(userID, "predict:"+PredictionListHomeState, TierBuckets(last.response.HomeStatePredictions, last.mode))
	return s.render(ctx, userID, token, last)
}

func (s *PredictionService) render(ctx context.Context, userID, token string, last lastPrediction) (*models.PredictionView, error) {
	locked := false
	if last.productID != "" && s.entitlements != nil {
		unlock, err := s.entitlements.Check(ctx, userID, token, last.productID)
		if err != nil {
			return nil, err
		}
		locked = !unlock.Unlocked
	}

	all := TierBuckets(last.response.Predictions, last.mode)
	home := TierBuckets(last.response.HomeStatePredictions, last.mode)

	return &models.PredictionView{
		All:                 tierView(all, s.views.Get(userID, "predict:"+PredictionListAll), locked),
		HomeState:           tierView(home, s.views.Get(userID, "predict:"+PredictionListHomeState), locked),
		CalculatedRank:      last.response.CalculatedRank,
		GenderFilter:        last.mode,
		GenderFilterVisible: GenderFilterVisible(last.input.Gender),
		Locked:              locked,
	}, nil
}

func tierView(buckets Buckets[models.PredictedOption], state SelectionState, locked bool) models.TierView {
	view := models.TierView{
		Tiers: buckets.Counts(),
		Rows:  []models.PredictedOption{},
		Extra: []models.PredictedOption{},
	}
	if state.Selected {
		view.ActiveTier = state.Active
	} else {
		view.Empty = true
	}
	if locked {
		return view
	}
	if state.Selected {
		view.Rows = buckets.Items(state.Active)
	}
	view.Extra = buckets.Unclassified()
	return view
}

func noPredictionError(operation string) error {
	return shared.NewServiceError(shared.ErrorCategoryNotFound, "NO_PREDICTION",
		"Run a prediction first", predictionServiceName, operation, false, nil)
}
