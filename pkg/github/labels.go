package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ghsync/pkg/logging"
)

// LabelReconciler reconciles repository labels against the manifest
type LabelReconciler struct {
	client APIClient
	dryRun bool
}

// NewLabelReconciler creates a label reconciler. With dryRun set it reports
// the outcome every mutation would have had without performing it.
func NewLabelReconciler(client APIClient, dryRun bool) *LabelReconciler {
	return &LabelReconciler{
		client: client,
		dryRun: dryRun,
	}
}

// Reconcile converges the repository toward the declared labels and returns
// the per-label outcomes. A failing label does not stop the remaining ones.
func (r *LabelReconciler) Reconcile(ctx context.Context, repo string, labels []LabelSpec) *Result {
	result := NewResult(repo)
	log := logging.Default().With().Str("repo", repo).Logger()

	for _, spec := range labels {
		if ctx.Err() != nil {
			return result
		}
		outcome, err := r.reconcileLabel(ctx, repo, spec, &log)
		result.record(spec.Name, outcome, err)
	}

	return result
}

func (r *LabelReconciler) reconcileLabel(ctx context.Context, repo string, spec LabelSpec, log *zerolog.Logger) (Outcome, error) {
	existing, err := r.client.GetLabel(ctx, repo, spec.Name)

	switch {
	case err == nil:
		if labelInSync(existing, spec) {
			log.Debug().Str("label", spec.Name).Msg("label already in sync")
			return OutcomeSkipped, nil
		}
		if r.dryRun {
			log.Info().Str("label", spec.Name).Msg("would update label")
			return OutcomeUpdated, nil
		}
		if _, err := r.client.UpdateLabel(ctx, repo, spec.Name, spec); err != nil {
			log.Error().Err(err).Str("label", spec.Name).Msg("failed to update label")
			return OutcomeFailed, err
		}
		log.Info().Str("label", spec.Name).Msg("updated label")
		return OutcomeUpdated, nil

	case IsNotFound(err):
		if r.dryRun {
			log.Info().Str("label", spec.Name).Msg("would create label")
			return OutcomeCreated, nil
		}
		created, err := r.client.CreateLabel(ctx, repo, spec)
		if err != nil {
			if IsConflict(err) {
				return r.adoptExistingLabel(ctx, repo, spec, log)
			}
			log.Error().Err(err).Str("label", spec.Name).Msg("failed to create label")
			return OutcomeFailed, err
		}
		log.Info().Str("label", created.Name).Msg("created label")
		return OutcomeCreated, nil

	default:
		log.Error().Err(err).Str("label", spec.Name).Msg("failed to fetch label")
		return OutcomeFailed, err
	}
}

// adoptExistingLabel recovers from a create that was rejected as a
// duplicate. Label lookup by name is exact while creation treats names
// case-insensitively, so a label differing only in case is invisible to the
// fetch yet still collides. Re-list, find the case-insensitive match and
// update it in place, which also renames it to the declared casing.
func (r *LabelReconciler) adoptExistingLabel(ctx context.Context, repo string, spec LabelSpec, log *zerolog.Logger) (Outcome, error) {
	labels, err := r.client.ListLabels(ctx, repo)
	if err != nil {
		log.Error().Err(err).Str("label", spec.Name).Msg("failed to list labels after create conflict")
		return OutcomeFailed, err
	}

	for i := range labels {
		if strings.EqualFold(labels[i].Name, spec.Name) {
			if _, err := r.client.UpdateLabel(ctx, repo, labels[i].Name, spec); err != nil {
				log.Error().Err(err).Str("label", spec.Name).Msg("failed to update existing label")
				return OutcomeFailed, err
			}
			log.Info().Str("label", spec.Name).Str("existing", labels[i].Name).Msg("updated label that existed under a different case")
			return OutcomeUpdated, nil
		}
	}

	err = NewGitHubError(ErrorTypeConflict,
		fmt.Sprintf("label %q was rejected as a duplicate but no existing match was found", spec.Name), nil)
	log.Error().Err(err).Str("label", spec.Name).Msg("failed to create label")
	return OutcomeFailed, err
}

// Sync deletes labels present in the repository but absent from the
// manifest. Name comparison is case-insensitive so labels the reconcile
// pass adopted under a different casing are not deleted.
func (r *LabelReconciler) Sync(ctx context.Context, repo string, declared []string) *Result {
	result := NewResult(repo)
	log := logging.Default().With().Str("repo", repo).Logger()

	existing, err := r.client.ListLabels(ctx, repo)
	if err != nil {
		log.Error().Err(err).Msg("failed to list labels for sync")
		result.record("label sync", OutcomeFailed, err)
		return result
	}

	want := make(map[string]bool, len(declared))
	for _, name := range declared {
		want[strings.ToLower(name)] = true
	}

	for _, label := range existing {
		if want[strings.ToLower(label.Name)] {
			continue
		}
		if ctx.Err() != nil {
			return result
		}
		if r.dryRun {
			log.Info().Str("label", label.Name).Msg("would delete label")
			result.record(label.Name, OutcomeRemoved, nil)
			continue
		}
		if err := r.client.DeleteLabel(ctx, repo, label.Name); err != nil {
			log.Error().Err(err).Str("label", label.Name).Msg("failed to delete label")
			result.record(label.Name, OutcomeFailed, err)
			continue
		}
		log.Info().Str("label", label.Name).Msg("deleted label")
		result.record(label.Name, OutcomeRemoved, nil)
	}

	return result
}

// labelInSync compares the declared label against the existing one. Colors
// compare case-insensitively with any leading '#' stripped.
func labelInSync(existing *Label, spec LabelSpec) bool {
	if normalizeColor(existing.Color) != normalizeColor(spec.Color) {
		return false
	}
	return existing.Description == spec.Description
}

func normalizeColor(color string) string {
	return strings.ToLower(strings.TrimPrefix(color, "#"))
}
