package services

import (
	"context"
	"strings"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const examServiceName = "Exam_Service"

// ExamFetcher loads exam content
type ExamFetcher interface {
	FetchExam(ctx context.Context, examID, token string) (*models.ExamContent, error)
}

// ExamViewRequest identifies one exam page load
type ExamViewRequest struct {
	UserID    string
	Token     string
	ExamID    string
	ProductID string
}

// ExamService builds tabbed exam views from content sections
type ExamService struct {
	content      ExamFetcher
	entitlements *EntitlementService
	views        *ViewStateStore
	text         *UtilityService
	metrics      *shared.ServiceMetrics
	logger       *logrus.Entry
}

// NewExamService creates an exam service. entitlements may be nil when no
// exam content is gated.
func NewExamService(content ExamFetcher, entitlements *EntitlementService, views *ViewStateStore, text *UtilityService, metrics *shared.ServiceMetrics) *ExamService {
	if metrics == nil {
		metrics = shared.NewServiceMetrics(examServiceName)
	}
	return &ExamService{
		content:      content,
		entitlements: entitlements,
		views:        views,
		text:         text,
		metrics:      metrics,
		logger:       logrus.WithField("component", "ExamService"),
	}
}

func examViewKey(examID string) string {
	return "exam:" + examID
}

// GetExamView loads the exam, regroups its sections and applies the
// selection correction rule to the user's stored tab.
func (s *ExamService) GetExamView(ctx context.Context, req ExamViewRequest) (*models.ExamView, error) {
	start := time.Now()
	exam, buckets, locked, err := s.load(ctx, req)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		return nil, err
	}

	state := s.views.Regroup(req.UserID, examViewKey(exam.ID), buckets)
	s.metrics.RecordRequest(true, time.Since(start))
	return s.buildView(exam, buckets, state, locked), nil
}

// SelectTab records a user's tab click and returns the view for it. The click
// is honored even when the tab is empty.
func (s *ExamService) SelectTab(ctx context.Context, req ExamViewRequest, rawTab string) (*models.ExamView, error) {
	tab := Classify(rawTab, models.ExamTabs())
	if tab == Unclassified {
		return nil, shared.NewValidationError(examServiceName, "select_tab", "tab", "Unknown tab "+strings.TrimSpace(rawTab))
	}

	exam, buckets, locked, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	state := s.views.Select(req.UserID, examViewKey(exam.ID), tab)
	return s.buildView(exam, buckets, state, locked), nil
}

func (s *ExamService) load(ctx context.Context, req ExamViewRequest) (*models.ExamContent, Buckets[models.ContentSection], bool, error) {
	if strings.TrimSpace(req.ExamID) == "" {
		return nil, Buckets[models.ContentSection]{}, false, shared.NewValidationError(examServiceName, "get_exam_view", "exam_id", "Exam id is required")
	}

	// content and entitlement are independent round trips
	var (
		exam   *models.ExamContent
		locked bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exam, err = s.content.FetchExam(gctx, req.ExamID, req.Token)
		return err
	})
	if req.ProductID != "" && s.entitlements != nil {
		g.Go(func() error {
			unlock, err := s.entitlements.Check(gctx, req.UserID, req.Token, req.ProductID)
			if err != nil {
				return err
			}
			locked = !unlock.Unlocked
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Buckets[models.ContentSection]{}, false, err
	}

	buckets := Group(exam.Sections, models.ExamTabs(), ClassifySection)
	if n := len(buckets.Unclassified()); n > 0 {
		s.logger.WithFields(logrus.Fields{
			"exam_id":            exam.ID,
			"unclassified_count": n,
		}).Debug("Sections routed to extra bucket")
	}
	return exam, buckets, locked, nil
}

func (s *ExamService) buildView(exam *models.ExamContent, buckets Buckets[models.ContentSection], state SelectionState, locked bool) *models.ExamView {
	view := &models.ExamView{
		ExamID:   exam.ID,
		Name:     exam.Name,
		Tabs:     buckets.Counts(),
		Sections: []models.SectionView{},
		Extra:    s.sectionViews(buckets.Unclassified(), locked),
		Locked:   locked,
	}

	if !state.Selected {
		view.Empty = true
		return view
	}
	view.ActiveTab = state.Active
	view.Sections = s.sectionViews(buckets.Items(state.Active), locked)
	return view
}

func (s *ExamService) sectionViews(sections []models.ContentSection, locked bool) []models.SectionView {
	out := make([]models.SectionView, 0, len(sections))
	for _, section := range sections {
		sv := models.SectionView{
			Title:     section.Title,
			WordCount: s.text.WordCount(section.BodyHTML),
			Locked:    locked,
		}
		if locked {
			sv.Preview = s.text.Preview(section.BodyHTML)
		} else {
			sv.BodyHTML = section.BodyHTML
		}
		out = append(out, sv)
	}
	return out
}
