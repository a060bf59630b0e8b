package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ghsync/pkg/logging"
)

// Options configures a sync run
type Options struct {
	// DryRun reports what milestone and label operations would do without
	// performing them. Secrets are still written, see SecretApplier.
	DryRun bool

	// SyncLabels deletes labels not declared in the manifest
	SyncLabels bool

	// SyncMilestones deletes milestones not declared in the manifest
	SyncMilestones bool

	// DefaultOwner prefixes manifest repository names that carry no owner
	DefaultOwner string

	// Organization scopes repository discovery when the manifest declares
	// no repositories
	Organization string
}

// RunReport aggregates the outcome of a full sync run
type RunReport struct {
	Repositories   []string      `json:"repositories"`
	Milestones     Stats         `json:"milestones"`
	Labels         Stats         `json:"labels"`
	SecretsApplied int           `json:"secrets_applied"`
	SecretsFailed  int           `json:"secrets_failed"`
	Duration       time.Duration `json:"duration"`
}

// OK reports whether every operation in the run succeeded
func (r *RunReport) OK() bool {
	return r.Milestones.Failed == 0 && r.Labels.Failed == 0 && r.SecretsFailed == 0
}

// TotalOperations returns the number of operations the run performed
func (r *RunReport) TotalOperations() int {
	return r.Milestones.Total() + r.Labels.Total() + r.SecretsApplied + r.SecretsFailed
}

// FailedOperations returns the number of operations that failed
func (r *RunReport) FailedOperations() int {
	return r.Milestones.Failed + r.Labels.Failed + r.SecretsFailed
}

// SuccessfulOperations returns the number of operations that succeeded
func (r *RunReport) SuccessfulOperations() int {
	return r.TotalOperations() - r.FailedOperations()
}

// Orchestrator drives a sync run across all target repositories. Work is
// strictly sequential: repositories in manifest order, and milestones,
// labels, secrets, then the deletion passes within each repository.
type Orchestrator struct {
	client APIClient
	opts   Options

	milestones *MilestoneReconciler
	labels     *LabelReconciler
	secrets    *SecretApplier
}

// NewOrchestrator creates an orchestrator for the given client and options
func NewOrchestrator(client APIClient, opts Options) *Orchestrator {
	return &Orchestrator{
		client:     client,
		opts:       opts,
		milestones: NewMilestoneReconciler(client, opts.DryRun),
		labels:     NewLabelReconciler(client, opts.DryRun),
		secrets:    NewSecretApplier(client),
	}
}

// ResolveRepositories expands the manifest repository list into full
// owner/name identifiers. Names without an owner get the default owner
// prefixed. A manifest without repositories targets every repository the
// token can see, scoped to the organization when one is set.
func (o *Orchestrator) ResolveRepositories(ctx context.Context, manifest *Manifest) ([]string, error) {
	if len(manifest.Repositories) > 0 {
		repos := make([]string, 0, len(manifest.Repositories))
		for _, repo := range manifest.Repositories {
			if !strings.Contains(repo, "/") {
				if o.opts.DefaultOwner == "" {
					return nil, NewGitHubError(ErrorTypeValidation,
						fmt.Sprintf("repository %q has no owner and no organization or user is configured", repo), nil)
				}
				repo = o.opts.DefaultOwner + "/" + repo
			}
			repos = append(repos, repo)
		}
		return repos, nil
	}

	return o.client.ListRepositories(ctx, o.opts.Organization)
}

// Run reconciles every target repository in order and aggregates the
// results. Per-item failures are counted in the report and do not stop the
// run; the returned error is non-nil only for fatal conditions such as
// repository resolution failing or the context being canceled. On
// cancellation the report still carries the counts accumulated so far.
func (o *Orchestrator) Run(ctx context.Context, manifest *Manifest) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{}

	repos, err := o.ResolveRepositories(ctx, manifest)
	if err != nil {
		return nil, err
	}
	report.Repositories = repos

	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
		o.runRepo(ctx, repo, manifest, report)
	}

	report.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (o *Orchestrator) runRepo(ctx context.Context, repo string, manifest *Manifest, report *RunReport) {
	log := logging.Default().With().Str("repo", repo).Logger()
	log.Info().Msg("processing repository")

	if len(manifest.Milestones) > 0 {
		result := o.milestones.Reconcile(ctx, repo, manifest.Milestones)
		report.Milestones.Merge(result.Stats)
	}
	if ctx.Err() != nil {
		return
	}

	if len(manifest.Labels) > 0 {
		result := o.labels.Reconcile(ctx, repo, manifest.Labels)
		report.Labels.Merge(result.Stats)
	}
	if ctx.Err() != nil {
		return
	}

	if len(manifest.Secrets) > 0 {
		applied, failed := o.secrets.Apply(ctx, repo, manifest.Secrets)
		report.SecretsApplied += applied
		report.SecretsFailed += failed
	}
	if ctx.Err() != nil {
		return
	}

	// Deletion passes run even when nothing of that kind is declared: an
	// empty declaration with sync enabled means none should remain.
	if o.opts.SyncMilestones {
		result := o.milestones.Sync(ctx, repo, manifest.MilestoneTitles())
		report.Milestones.Merge(result.Stats)
	}
	if ctx.Err() != nil {
		return
	}

	if o.opts.SyncLabels {
		result := o.labels.Sync(ctx, repo, manifest.LabelNames())
		report.Labels.Merge(result.Stats)
	}
}
