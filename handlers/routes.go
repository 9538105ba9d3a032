package handlers

import "github.com/gofiber/fiber/v2"

// Handlers groups every route handler
type Handlers struct {
	Exams       *ExamHandler
	Predictions *PredictionHandler
	Payments    *PaymentHandler
	Accounts    *AccountHandler
	Metrics     *MetricsHandler
}

// Register mounts the API on app
func (h *Handlers) Register(app *fiber.App) {
	app.Get("/health", h.Metrics.Health)

	api := app.Group("/api/v1")

	// Session
	api.Post("/session", h.Accounts.Login)

	// Exam Routes
	api.Get("/exams/search", h.Exams.SearchExams)
	api.Get("/exams/:id", h.Exams.GetExam)
	api.Post("/exams/:id/tab", h.Exams.SelectTab)

	// Predictor Routes
	api.Post("/predict", h.Predictions.Predict)
	api.Post("/predict/filter", h.Predictions.Refilter)
	api.Post("/predict/tier", h.Predictions.SelectTier)

	// Coupon and Payment Routes
	api.Post("/coupon/validate", h.Payments.ValidateCoupon)
	api.Post("/payment/checkout", h.Payments.Checkout)
	api.Post("/payment/verify", h.Payments.Verify)
	api.Post("/payment/cancel", h.Payments.Cancel)
	api.Get("/payment/history", h.Payments.History)

	// Orders and unlock state
	api.Get("/orders", h.Accounts.Orders)
	api.Get("/unlock/:product_id", h.Accounts.Unlock)

	// Operations
	api.Get("/metrics", h.Metrics.GetMetrics)
	api.Delete("/cache", h.Metrics.ClearCache)
}
