package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
)

// fakeUpstream stands in for the UpstreamClient in service tests
type fakeUpstream struct {
	mutex sync.Mutex

	exams      map[string]*models.ExamContent
	prediction *models.PredictionResponse
	orders     []models.Order
	quotes     map[string]*models.CouponQuote

	verifySuccess bool
	createErr     error
	nextOrder     int

	fetchCalls  int
	listCalls   int
	createCalls int
	verifyCalls int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		exams:         map[string]*models.ExamContent{},
		quotes:        map[string]*models.CouponQuote{},
		orders:        []models.Order{},
		verifySuccess: true,
	}
}

func (f *fakeUpstream) FetchExam(_ context.Context, examID, _ string) (*models.ExamContent, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.fetchCalls++
	exam, ok := f.exams[examID]
	if !ok {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "NOT_FOUND", "exam not found", "fake", "fetch_exam", false, nil)
	}
	return exam, nil
}

func (f *fakeUpstream) SearchExams(_ context.Context, query, _ string) ([]models.ExamSummary, error) {
	return []models.ExamSummary{{ID: query, Name: query}}, nil
}

func (f *fakeUpstream) Predict(_ context.Context, _ models.PredictionRequest, _ string) (*models.PredictionResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.prediction == nil {
		return nil, shared.NewRemoteFetchError("fake", "predict", fmt.Errorf("predictor down"))
	}
	copied := *f.prediction
	return &copied, nil
}

func (f *fakeUpstream) ValidateCoupon(_ context.Context, code, _ string, _ string) (*models.CouponQuote, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	quote, ok := f.quotes[code]
	if !ok {
		return nil, shared.NewCouponError(shared.CodeCouponNotFound, "Coupon not found", "fake", "validate_coupon")
	}
	return quote, nil
}

func (f *fakeUpstream) CreateOrder(_ context.Context, req models.CreateOrderRequest, _ string) (*models.CreateOrderResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextOrder++
	return &models.CreateOrderResponse{ID: fmt.Sprintf("order_%d", f.nextOrder)}, nil
}

func (f *fakeUpstream) VerifyPayment(_ context.Context, req models.VerifyPaymentRequest, _ string) (*models.VerifyPaymentResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.verifyCalls++
	if !f.verifySuccess {
		return &models.VerifyPaymentResponse{Success: false, Message: "signature mismatch"}, nil
	}
	return &models.VerifyPaymentResponse{Success: true}, nil
}

func (f *fakeUpstream) ListOrders(_ context.Context, _ string) ([]models.Order, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.listCalls++
	return append([]models.Order{}, f.orders...), nil
}

func (f *fakeUpstream) setOrders(orders ...models.Order) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.orders = orders
}

// fakeCoupons is an in-memory CouponCatalog
type fakeCoupons map[string]*models.Coupon

func (c fakeCoupons) GetCouponByCode(_ context.Context, code string) (*models.Coupon, error) {
	return c[code], nil
}

func testCatalog() *StaticCatalog {
	return NewStaticCatalog([]models.Product{
		{ID: "rank-predictor", Name: "Rank Predictor", Price: 499},
		{ID: "exam-guide", Name: "Exam Guide", Price: 0},
	})
}
