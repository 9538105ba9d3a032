package jobs

import (
	"time"

	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/sirupsen/logrus"
)

// CacheCleanupJob purges expired content and forgets idle view state
type CacheCleanupJob struct {
	CacheService *services.CacheService
	Views        *services.ViewStateStore
	Predictions  *services.PredictionService
	IdleAfter    time.Duration
}

func NewCacheCleanupJob(cacheService *services.CacheService, views *services.ViewStateStore, predictions *services.PredictionService, idleAfter time.Duration) *CacheCleanupJob {
	return &CacheCleanupJob{
		CacheService: cacheService,
		Views:        views,
		Predictions:  predictions,
		IdleAfter:    idleAfter,
	}
}

func (j *CacheCleanupJob) Run() {
	startTime := time.Now()
	logrus.Debug("Starting Cache Cleanup Job")

	removed := j.CacheService.CleanupExpired()

	var views, predictions int
	if j.IdleAfter > 0 {
		cutoff := time.Now().Add(-j.IdleAfter)
		if j.Views != nil {
			views = j.Views.PurgeOlderThan(cutoff)
		}
		if j.Predictions != nil {
			predictions = j.Predictions.Forget(cutoff)
		}
	}

	logrus.WithFields(logrus.Fields{
		"component":           "CacheCleanupJob",
		"expired_entries":     removed,
		"idle_view_states":    views,
		"stale_predictions":   predictions,
		"remaining_entries":   j.CacheService.Size(),
		"processing_duration": time.Since(startTime),
	}).Info("Cache Cleanup Job completed")
}

// Start runs the job every interval until stop is closed
func (j *CacheCleanupJob) Start(interval time.Duration, stop <-chan struct{}) {
	runEvery(interval, stop, j.Run)
}
