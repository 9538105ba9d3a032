package jobs

import (
	"context"
	"time"

	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/sirupsen/logrus"
)

// CheckoutReaperJob releases checkout attempts whose widget never reported back
type CheckoutReaperJob struct {
	Payments *services.PaymentService
}

func NewCheckoutReaperJob(payments *services.PaymentService) *CheckoutReaperJob {
	return &CheckoutReaperJob{Payments: payments}
}

func (j *CheckoutReaperJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	released := j.Payments.ReleaseStale(ctx)
	if released > 0 {
		logrus.WithFields(logrus.Fields{
			"component": "CheckoutReaperJob",
			"released":  released,
		}).Info("Released stale checkout attempts")
	}
}

// Start runs the job every interval until stop is closed
func (j *CheckoutReaperJob) Start(interval time.Duration, stop <-chan struct{}) {
	runEvery(interval, stop, j.Run)
}

func runEvery(interval time.Duration, stop <-chan struct{}, fn func()) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				return
			}
		}
	}()
}
