package models

// Tab is a canonical bucket name for exam content sections or prediction tiers
type Tab string

// Exam content tabs, in display priority order
const (
	TabOverview    Tab = "Overview"
	TabPattern     Tab = "Pattern"
	TabEligibility Tab = "Eligibility"
	TabSyllabus    Tab = "Syllabus"
	TabFees        Tab = "Fees"
	TabApplication Tab = "Application"
	TabResult      Tab = "Result"
	TabDates       Tab = "Dates"
)

// Prediction confidence tiers, in display priority order
const (
	TierHigh   Tab = "High"
	TierMedium Tab = "Medium"
	TierLow    Tab = "Low"
)

// Unclassified is the bucket for items matching no vocabulary member
const Unclassified Tab = "Unclassified"

// ExamTabs returns the exam content vocabulary in declaration order
func ExamTabs() []Tab {
	return []Tab{TabOverview, TabPattern, TabEligibility, TabSyllabus, TabFees, TabApplication, TabResult, TabDates}
}

// TierTabs returns the prediction tier vocabulary in declaration order
func TierTabs() []Tab {
	return []Tab{TierHigh, TierMedium, TierLow}
}

// ContentSection is one titled block of exam content as served by the content API
type ContentSection struct {
	Title    string `json:"title"`
	BodyHTML string `json:"bodyHtml"`
}

// ExamContent is the response of GET /exam/{id}
type ExamContent struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Sections []ContentSection `json:"sections"`
}

// ExamSummary is one row of the exam directory search
type ExamSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// SectionView is a section as rendered to the UI. Locked sections carry only a preview.
type SectionView struct {
	Title     string `json:"title"`
	BodyHTML  string `json:"body_html,omitempty"`
	Preview   string `json:"preview,omitempty"`
	WordCount int    `json:"word_count"`
	Locked    bool   `json:"locked"`
}

// TabCount is an available tab with its item count
type TabCount struct {
	Tab   Tab `json:"tab"`
	Count int `json:"count"`
}

// ExamView is the derived view model for an exam detail page
type ExamView struct {
	ExamID    string        `json:"exam_id"`
	Name      string        `json:"name"`
	Tabs      []TabCount    `json:"tabs"`
	ActiveTab Tab           `json:"active_tab,omitempty"`
	Sections  []SectionView `json:"sections"`
	Extra     []SectionView `json:"extra"`
	Empty     bool          `json:"empty"`
	Locked    bool          `json:"locked"`
}
