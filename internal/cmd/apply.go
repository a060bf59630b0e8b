package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ghsync/pkg/config"
	"ghsync/pkg/fuzzy"
	"ghsync/pkg/github"
	"ghsync/pkg/logging"
)

var (
	applyToken          string
	applyOrg            string
	applyDryRun         bool
	applySync           bool
	applySyncLabels     bool
	applySyncMilestones bool
	applySummary        bool
	applyPick           bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <manifest.yaml>",
	Short: "Apply a manifest to GitHub",
	Long: `Apply a manifest to GitHub, converging every target repository toward the
declared milestones, labels and Actions secrets.

Repositories listed in the manifest are processed in order; names without an
owner are prefixed with the organization or the authenticated user. A
manifest that lists no repositories targets every repository the token can
see. Failures on one item or repository are counted and the run moves on.

Milestones match by exact title across open and closed ones, labels by name.
Existing items are updated only when the declared fields differ, so a second
run over a converged repository reports everything as skipped. Secret values
cannot be read back from GitHub, so declared secrets are sealed and written
on every run, dry-run included.

Examples:
  # Converge the repositories declared in the manifest
  ghsync apply manifest.yaml

  # Preview milestone and label changes only
  ghsync apply manifest.yaml --dry-run

  # Delete labels and milestones nobody declares anymore
  ghsync apply manifest.yaml --sync

  # Target one repository chosen interactively
  ghsync apply manifest.yaml --pick

  # Organization repositories with a summary block at the end
  ghsync apply manifest.yaml --org myorg --summary`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyToken, "token", "", "GitHub token (overrides GITHUB_TOKEN and config files)")
	applyCmd.Flags().StringVarP(&applyOrg, "org", "o", "", "Organization owning the repositories")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Report milestone and label changes without applying them")
	applyCmd.Flags().BoolVar(&applySync, "sync", false, "Delete labels and milestones not declared in the manifest")
	applyCmd.Flags().BoolVar(&applySyncLabels, "sync-labels", false, "Delete labels not declared in the manifest")
	applyCmd.Flags().BoolVar(&applySyncMilestones, "sync-milestones", false, "Delete milestones not declared in the manifest")
	applyCmd.Flags().BoolVar(&applySummary, "summary", false, "Print summary statistics after the run")
	applyCmd.Flags().BoolVar(&applyPick, "pick", false, "Interactively pick a single target repository")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	manifestFile := args[0]

	manifest, err := github.LoadManifestFromFile(manifestFile)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	syncLabels := applySync || applySyncLabels
	syncMilestones := applySync || applySyncMilestones

	if !manifest.HasResources() && !syncLabels && !syncMilestones {
		fmt.Printf("✓ Manifest declares nothing to reconcile. Nothing to do.\n")
		return nil
	}

	// Load ghsync configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load ghsync config: %w", err)
	}

	// Set up GitHub authentication
	authManager := github.NewAuthManager()
	tokenInfo, err := authManager.AuthenticateFromConfig(ctx, applyToken, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "%s\n", github.GetAuthInstructions())
		return err
	}

	fmt.Printf("✓ Authenticated as %s\n", tokenInfo.User)

	token, err := authManager.GetToken(applyToken, cfg)
	if err != nil {
		return fmt.Errorf("failed to get GitHub token: %w", err)
	}

	client := github.NewClient(token)
	checkRateLimit(ctx, client)

	org := resolveOrganization(cfg)
	defaultOwner := org
	if defaultOwner == "" {
		defaultOwner = tokenInfo.User
	}

	if applyDryRun {
		fmt.Printf("🔍 Dry-run mode: milestone and label changes will only be reported\n")
		if len(manifest.Secrets) > 0 {
			logging.Default().Warn().Msg("secret values cannot be compared, declared secrets are written even in dry-run mode")
		}
	}

	orch := github.NewOrchestrator(client, github.Options{
		DryRun:         applyDryRun,
		SyncLabels:     syncLabels,
		SyncMilestones: syncMilestones,
		DefaultOwner:   defaultOwner,
		Organization:   org,
	})

	if applyPick {
		repo, err := pickRepository(ctx, orch, manifest)
		if err != nil {
			return err
		}
		manifest.Repositories = []string{repo}
	}

	report, runErr := orch.Run(ctx, manifest)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			// Partial statistics still get reported on interrupt
			if report != nil {
				printSummary(report)
			}
			return fmt.Errorf("sync interrupted: %w", runErr)
		}
		return fmt.Errorf("sync failed: %w", runErr)
	}

	if applySummary {
		printSummary(report)
	}

	if !report.OK() {
		fmt.Printf("\n❌ Sync completed with failures: %d of %d operations failed\n",
			report.FailedOperations(), report.TotalOperations())
		return fmt.Errorf("%d of %d operations failed", report.FailedOperations(), report.TotalOperations())
	}

	if applyDryRun {
		fmt.Printf("\n✓ Dry-run completed. No milestone or label changes were applied.\n")
		return nil
	}

	fmt.Printf("\n✅ Sync completed: %d operations across %d repositories\n",
		report.TotalOperations(), len(report.Repositories))
	return nil
}

// resolveOrganization picks the organization scope: the flag, the ghsync
// config, then the user from the [github] section of ~/.gitconfig
func resolveOrganization(cfg *config.Config) string {
	if applyOrg != "" {
		return applyOrg
	}
	if cfg != nil && cfg.GitHub.Organization != "" {
		return cfg.GitHub.Organization
	}
	if gitCfg, err := config.LoadGitConfig(); err == nil && gitCfg.User != "" {
		return gitCfg.User
	}
	return ""
}

// checkRateLimit warns when the remaining API budget looks too small for a
// sync run. Failures here are logged and ignored, the run proceeds.
func checkRateLimit(ctx context.Context, client github.APIClient) {
	rate, err := client.CheckRateLimit(ctx)
	if err != nil {
		logging.Default().Debug().Err(err).Msg("could not check the API rate limit")
		return
	}

	logging.Default().Debug().
		Int("remaining", rate.Remaining).
		Int("limit", rate.Limit).
		Msg("GitHub API rate limit")

	if rate.Remaining < 100 {
		logging.Default().Warn().
			Int("remaining", rate.Remaining).
			Time("reset", rate.Reset).
			Msg("GitHub API rate limit nearly exhausted, the run may fail partway")
	}
}

// pickRepository narrows the run to one interactively chosen repository
func pickRepository(ctx context.Context, orch *github.Orchestrator, manifest *github.Manifest) (string, error) {
	repos, err := orch.ResolveRepositories(ctx, manifest)
	if err != nil {
		return "", fmt.Errorf("failed to resolve repositories: %w", err)
	}

	if len(repos) == 0 {
		return "", fmt.Errorf("no repositories to pick from")
	}
	if len(repos) == 1 {
		return repos[0], nil
	}

	options := make([]fuzzy.Option, 0, len(repos))
	for _, repo := range repos {
		options = append(options, fuzzy.Option{Value: repo})
	}

	var picker fuzzy.Picker
	if term.IsTerminal(int(os.Stdin.Fd())) {
		picker = fuzzy.NewFzf("Repository:")
	} else {
		picker = fuzzy.New("Select a repository to sync")
	}

	if err := picker.SetOptions(options); err != nil {
		return "", err
	}
	return picker.Select()
}

// printSummary prints the end-of-run statistics block
func printSummary(report *github.RunReport) {
	line := strings.Repeat("=", 60)

	fmt.Printf("\n%s\n", line)
	fmt.Println("SUMMARY STATISTICS")
	fmt.Println(line)
	fmt.Printf("Execution time: %.2f seconds\n", report.Duration.Seconds())
	fmt.Printf("Repositories processed: %d\n", len(report.Repositories))
	fmt.Printf("Successful operations: %d\n", report.SuccessfulOperations())
	fmt.Printf("Failed operations: %d\n", report.FailedOperations())
	fmt.Printf("Total operations: %d\n", report.TotalOperations())

	printStats("Milestone operations", report.Milestones)
	printStats("Label operations", report.Labels)

	if report.SecretsApplied > 0 || report.SecretsFailed > 0 {
		fmt.Printf("\nSecret operations:\n")
		fmt.Printf("  Applied: %d\n", report.SecretsApplied)
		fmt.Printf("  Failed: %d\n", report.SecretsFailed)
	}
}

func printStats(title string, stats github.Stats) {
	fmt.Printf("\n%s:\n", title)
	fmt.Printf("  Created: %d\n", stats.Created)
	fmt.Printf("  Updated: %d\n", stats.Updated)
	fmt.Printf("  Removed: %d\n", stats.Removed)
	fmt.Printf("  Skipped: %d\n", stats.Skipped)
	fmt.Printf("  Failed: %d\n", stats.Failed)
}
