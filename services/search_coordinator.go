package services

import (
	"context"
	"errors"
	"strings"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/sirupsen/logrus"
)

// ExamSearcher runs a directory search
type ExamSearcher interface {
	SearchExams(ctx context.Context, query, token string) ([]models.ExamSummary, error)
}

// SearchResult is the outcome of one debounced search call. A superseded call
// carries no results; the newer call for the same session answers instead.
type SearchResult struct {
	Query      string               `json:"query"`
	Results    []models.ExamSummary `json:"results"`
	Superseded bool                 `json:"superseded"`
}

// SearchCoordinator debounces search input per session and applies
// last-request-wins ordering to the fetches it triggers.
type SearchCoordinator struct {
	searcher  ExamSearcher
	debouncer *shared.Debouncer
	sequencer *shared.RequestSequencer
	metrics   *shared.ServiceMetrics
	logger    *logrus.Entry
}

// NewSearchCoordinator creates a coordinator
func NewSearchCoordinator(searcher ExamSearcher, debouncer *shared.Debouncer, sequencer *shared.RequestSequencer, metrics *shared.ServiceMetrics) *SearchCoordinator {
	if metrics == nil {
		metrics = shared.NewServiceMetrics("Search_Coordinator")
	}
	return &SearchCoordinator{
		searcher:  searcher,
		debouncer: debouncer,
		sequencer: sequencer,
		metrics:   metrics,
		logger:    logrus.WithField("component", "SearchCoordinator"),
	}
}

// Search waits for the session's input to settle, then fetches. Keystrokes
// arriving during the wait or the fetch supersede this call.
func (c *SearchCoordinator) Search(ctx context.Context, session, query, token string) (*SearchResult, error) {
	query = strings.TrimSpace(query)

	if err := c.debouncer.Wait(ctx, session); err != nil {
		if errors.Is(err, shared.ErrSuperseded) {
			c.metrics.IncrementCustomCounter("debounced")
			return &SearchResult{Query: query, Results: []models.ExamSummary{}, Superseded: true}, nil
		}
		return nil, err
	}

	fetchCtx, ticket := c.sequencer.Begin(ctx, session)
	defer c.sequencer.Finish(session, ticket)

	if query == "" {
		return &SearchResult{Query: query, Results: []models.ExamSummary{}}, nil
	}

	results, err := c.searcher.SearchExams(fetchCtx, query, token)
	if !c.sequencer.IsLatest(session, ticket) {
		// a newer fetch owns this session; drop whatever came back
		c.metrics.IncrementCustomCounter("stale_discarded")
		c.logger.WithFields(logrus.Fields{
			"session": session,
			"query":   query,
		}).Debug("Discarding superseded search response")
		return &SearchResult{Query: query, Results: []models.ExamSummary{}, Superseded: true}, nil
	}
	if err != nil {
		return nil, err
	}

	c.metrics.IncrementCustomCounter("completed")
	return &SearchResult{Query: query, Results: results}, nil
}
