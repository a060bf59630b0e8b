package github

import (
	"context"
	"time"
)

// APIClient defines the interface for GitHub API operations. Repository
// arguments are full "owner/name" identifiers. List operations paginate
// through every page before returning. Errors carry the GitHubError taxonomy
// so callers can branch on error class instead of raw status codes.
type APIClient interface {
	// Label operations
	GetLabel(ctx context.Context, repo, name string) (*Label, error)
	ListLabels(ctx context.Context, repo string) ([]Label, error)
	CreateLabel(ctx context.Context, repo string, label LabelSpec) (*Label, error)
	UpdateLabel(ctx context.Context, repo, name string, label LabelSpec) (*Label, error)
	DeleteLabel(ctx context.Context, repo, name string) error

	// Milestone operations; listing includes closed milestones
	ListMilestones(ctx context.Context, repo string) ([]Milestone, error)
	CreateMilestone(ctx context.Context, repo string, milestone MilestoneSpec, dueOn *time.Time) (*Milestone, error)
	UpdateMilestone(ctx context.Context, repo string, number int, milestone MilestoneSpec, dueOn *time.Time) (*Milestone, error)
	DeleteMilestone(ctx context.Context, repo string, number int) error

	// Actions secret operations
	GetSecretPublicKey(ctx context.Context, repo string) (*SecretKey, error)
	PutSecret(ctx context.Context, repo, name, keyID, encryptedValue string) error

	// ListRepositories returns the full names of all repositories visible to
	// the token, scoped to org when non-empty
	ListRepositories(ctx context.Context, org string) ([]string, error)

	// CheckRateLimit returns the current core rate limit state
	CheckRateLimit(ctx context.Context) (*RateInfo, error)
}

// Outcome represents the reconciliation result for a single item
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeRemoved Outcome = "removed"
	OutcomeFailed  Outcome = "failed"
)

// Stats counts reconciliation outcomes for one resource kind
type Stats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Merge adds the counters from other into s
func (s *Stats) Merge(other Stats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Removed += other.Removed
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// Total returns the number of items counted
func (s Stats) Total() int {
	return s.Created + s.Updated + s.Removed + s.Skipped + s.Failed
}

// Succeeded returns the number of items that did not fail
func (s Stats) Succeeded() int {
	return s.Total() - s.Failed
}

// ItemOutcome records the outcome for one declared or remote item
type ItemOutcome struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// Result is the explicit return value of one reconciler invocation against
// one repository. Under dry-run, Items records the outcomes that a real run
// would have produced, without any write having happened.
type Result struct {
	Repo  string        `json:"repo"`
	Items []ItemOutcome `json:"items"`
	Stats Stats         `json:"stats"`
}

// NewResult creates an empty result for a repository
func NewResult(repo string) *Result {
	return &Result{Repo: repo}
}

// OK reports whether no item failed
func (r *Result) OK() bool {
	return r.Stats.Failed == 0
}

func (r *Result) record(name string, outcome Outcome, err error) {
	r.Items = append(r.Items, ItemOutcome{Name: name, Outcome: outcome, Err: err})
	switch outcome {
	case OutcomeCreated:
		r.Stats.Created++
	case OutcomeUpdated:
		r.Stats.Updated++
	case OutcomeRemoved:
		r.Stats.Removed++
	case OutcomeSkipped:
		r.Stats.Skipped++
	case OutcomeFailed:
		r.Stats.Failed++
	}
}
