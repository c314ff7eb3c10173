// File: internal/domain/model/document.go
package model

import "time"

// Category buckets a submitted URL into one of the three processing loops.
type Category string

const (
	CategoryVideo    Category = "Youtube"
	CategoryAcademic Category = "Arxiv"
	CategoryGeneric  Category = "Others"
)

// Summary type labels stored on the finished document.
const (
	SummaryTypeAcademic = "Arxiv abstract"
	SummaryTypeVideo    = "Youtube video"
	SummaryTypeGeneric  = "Description"
)

// Placeholder texts recorded when a document cannot be processed. Users can
// then fill the fields in manually from the admin surface.
const (
	PlaceholderFetchFailed = "Could not retrieve article (url could not be parsed)"
	PlaceholderParseFailed = "Could not retrieve article (parsing error)"
)

// Draft accumulates everything the pipeline learns about one URL. It is
// mutated through the scrape and completion stages and flattened into
// DocumentFields for persistence at the end of the run.
type Draft struct {
	URL           string
	Authors       []string
	Title         string
	Slug          string
	Overview      string
	Summary       string
	SummaryType   string
	Categories    []string
	Countries     []string
	DatePublished string // normalized YYYY/MM/DD
	ModelUsed     string
	Thumbnails    [][]byte
}

// NewDraft starts an empty draft for one source URL.
func NewDraft(url string) *Draft {
	return &Draft{URL: url}
}

// DocumentFields is the plain field mapping handed to the persistence
// gateway. Drafts are converted once, right before upsert.
type DocumentFields struct {
	Slug            string
	Title           string
	SourceURL       string
	PublicationDate time.Time
	Overview        string
	Summary         string
	SummaryType     string
	Comment         string
	Model           string
	IsDraft         bool
}

// Document is a persisted record as returned by the gateway.
type Document struct {
	ID              int64
	Slug            string
	Title           string
	SourceURL       string
	PublicationDate time.Time
	Overview        string
	Summary         string
	SummaryType     string
	Model           string
	IsDraft         bool
	DefaultImageID  *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RelatedKind tags the one-to-many satellite entities of a document.
type RelatedKind string

const (
	RelatedAuthor   RelatedKind = "author"
	RelatedCategory RelatedKind = "category"
	RelatedCountry  RelatedKind = "country"
)

// AttemptLog records one pipeline pass over one URL, for analysis and
// debugging. Turns is 0 when the completion backend was never called,
// 1 for a clean first parse and 2 when a healing round-trip happened.
type AttemptLog struct {
	ID        int64
	JobID     string
	SourceURL string
	Model     string
	Output    string
	Success   bool
	Turns     int
	CreatedAt time.Time
}

// JobSummary aggregates the attempt logs of one job.
type JobSummary struct {
	Logged         int
	Failed         int
	ProcessedByLLM int
	TwoShotSuccess int
	FailedJSON     int
	Model          string
}

// URLInfo is the submission-preview view of one URL: whether it is already
// stored, and how its last processing went.
type URLInfo struct {
	URL           string     `json:"url"`
	Exists        bool       `json:"exists"`
	Slug          string     `json:"slug,omitempty"`
	LastProcessed *time.Time `json:"last_processing,omitempty"`
	WasSuccess    *bool      `json:"was_success,omitempty"`
	Output        string     `json:"output,omitempty"`
	Model         string     `json:"model,omitempty"`
}
