package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ghsync/pkg/logging"
)

// dueDateLayouts are the accepted manifest due date formats, tried in order.
// The ISO form comes first so it wins over the day-first forms.
var dueDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// normalizeDueDate parses a manifest due date and pins it to the end of that
// day in UTC, so GitHub renders the intended calendar date regardless of the
// viewer's timezone. An empty value yields nil without error.
func normalizeDueDate(value string) (*time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil, nil
	}

	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		due := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
		return &due, nil
	}

	return nil, fmt.Errorf("unrecognized due date %q", value)
}

// MilestoneReconciler reconciles repository milestones against the manifest
type MilestoneReconciler struct {
	client APIClient
	dryRun bool
}

// NewMilestoneReconciler creates a milestone reconciler. With dryRun set it
// reports the outcome every mutation would have had without performing it.
func NewMilestoneReconciler(client APIClient, dryRun bool) *MilestoneReconciler {
	return &MilestoneReconciler{
		client: client,
		dryRun: dryRun,
	}
}

// Reconcile converges the repository toward the declared milestones and
// returns the per-milestone outcomes. Milestones match by exact title across
// every state. A failing milestone does not stop the remaining ones.
func (r *MilestoneReconciler) Reconcile(ctx context.Context, repo string, milestones []MilestoneSpec) *Result {
	result := NewResult(repo)
	log := logging.Default().With().Str("repo", repo).Logger()

	existing, err := r.client.ListMilestones(ctx, repo)
	if err != nil {
		log.Error().Err(err).Msg("failed to list milestones")
		result.record("list milestones", OutcomeFailed, err)
		return result
	}

	for _, spec := range milestones {
		if ctx.Err() != nil {
			return result
		}
		outcome, err := r.reconcileMilestone(ctx, repo, existing, spec, &log)
		result.record(spec.Title, outcome, err)
	}

	return result
}

func (r *MilestoneReconciler) reconcileMilestone(ctx context.Context, repo string, existing []Milestone, spec MilestoneSpec, log *zerolog.Logger) (Outcome, error) {
	dueOn, dueErr := spec.ParsedDueDate()
	if dueErr != nil {
		log.Warn().Str("milestone", spec.Title).Str("due_date", spec.DueDate).Msg("could not parse due date")
	}

	current := findMilestoneByTitle(existing, spec.Title)
	if current == nil {
		// A milestone created now would be missing its due date forever,
		// so hold off until the manifest is fixed.
		if dueErr != nil {
			log.Warn().Str("milestone", spec.Title).Msg("skipping milestone creation until the due date parses")
			return OutcomeSkipped, nil
		}
		if r.dryRun {
			log.Info().Str("milestone", spec.Title).Msg("would create milestone")
			return OutcomeCreated, nil
		}
		created, err := r.client.CreateMilestone(ctx, repo, spec, dueOn)
		if err != nil {
			if IsConflict(err) {
				log.Warn().Str("milestone", spec.Title).Msg("milestone already exists")
				return OutcomeSkipped, nil
			}
			log.Error().Err(err).Str("milestone", spec.Title).Msg("failed to create milestone")
			return OutcomeFailed, err
		}
		log.Info().Str("milestone", created.Title).Int("number", created.Number).Msg("created milestone")
		return OutcomeCreated, nil
	}

	// Due dates only participate when the manifest declares a parseable one
	compareDue := strings.TrimSpace(spec.DueDate) != "" && dueErr == nil
	if milestoneInSync(current, spec, dueOn, compareDue) {
		log.Debug().Str("milestone", spec.Title).Msg("milestone already in sync")
		return OutcomeSkipped, nil
	}
	if r.dryRun {
		log.Info().Str("milestone", spec.Title).Msg("would update milestone")
		return OutcomeUpdated, nil
	}
	if _, err := r.client.UpdateMilestone(ctx, repo, current.Number, spec, dueOn); err != nil {
		log.Error().Err(err).Str("milestone", spec.Title).Msg("failed to update milestone")
		return OutcomeFailed, err
	}
	log.Info().Str("milestone", spec.Title).Int("number", current.Number).Msg("updated milestone")
	return OutcomeUpdated, nil
}

// Sync deletes milestones present in the repository but absent from the
// manifest, matched by exact title.
func (r *MilestoneReconciler) Sync(ctx context.Context, repo string, declared []string) *Result {
	result := NewResult(repo)
	log := logging.Default().With().Str("repo", repo).Logger()

	existing, err := r.client.ListMilestones(ctx, repo)
	if err != nil {
		log.Error().Err(err).Msg("failed to list milestones for sync")
		result.record("milestone sync", OutcomeFailed, err)
		return result
	}

	want := make(map[string]bool, len(declared))
	for _, title := range declared {
		want[title] = true
	}

	for _, milestone := range existing {
		if want[milestone.Title] {
			continue
		}
		if ctx.Err() != nil {
			return result
		}
		if r.dryRun {
			log.Info().Str("milestone", milestone.Title).Msg("would delete milestone")
			result.record(milestone.Title, OutcomeRemoved, nil)
			continue
		}
		if err := r.client.DeleteMilestone(ctx, repo, milestone.Number); err != nil {
			log.Error().Err(err).Str("milestone", milestone.Title).Msg("failed to delete milestone")
			result.record(milestone.Title, OutcomeFailed, err)
			continue
		}
		log.Info().Str("milestone", milestone.Title).Msg("deleted milestone")
		result.record(milestone.Title, OutcomeRemoved, nil)
	}

	return result
}

// milestoneInSync compares the declared milestone against the existing one.
// Descriptions compare exactly, state only when declared, and due dates by
// UTC calendar day since GitHub shifts the stored timestamp within the day.
func milestoneInSync(existing *Milestone, spec MilestoneSpec, dueOn *time.Time, compareDue bool) bool {
	if existing.Description != spec.Description {
		return false
	}
	if spec.State != "" && existing.State != spec.State {
		return false
	}
	if compareDue && !sameDueDay(existing.DueOn, dueOn) {
		return false
	}
	return true
}

func sameDueDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func findMilestoneByTitle(milestones []Milestone, title string) *Milestone {
	for i := range milestones {
		if milestones[i].Title == title {
			return &milestones[i]
		}
	}
	return nil
}
