package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/fenilmodi00/counsel-backend/shared"
)

func TestCacheCleanupJobRun(t *testing.T) {
	cache := services.NewCacheService(shared.CacheConfig{DefaultTTL: time.Minute, MaxSize: 10})
	cache.SetWithTTL("exam:short", "x", time.Millisecond)
	cache.Set("exam:long", "y")

	views := services.NewViewStateStore()
	views.Select("u1", "exam:jee-main", models.TabSyllabus)

	time.Sleep(10 * time.Millisecond)

	NewCacheCleanupJob(cache, views, nil, 0).Run()
	assert.Equal(t, 1, cache.Size())
	assert.Equal(t, 1, views.Size(), "idle purge disabled")

	NewCacheCleanupJob(cache, views, nil, time.Millisecond).Run()
	assert.Equal(t, 0, views.Size())
	assert.Equal(t, 1, cache.Size())
}

func TestRunEveryStops(t *testing.T) {
	var runs int32
	stop := make(chan struct{})
	runEvery(5*time.Millisecond, stop, func() { atomic.AddInt32(&runs, 1) })

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, time.Second, time.Millisecond)
	close(stop)
	time.Sleep(20 * time.Millisecond)
	after := atomic.LoadInt32(&runs)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&runs))
}
