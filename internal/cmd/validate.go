package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ghsync/pkg/github"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest.yaml>",
	Short: "Validate a manifest without contacting GitHub",
	Long: `Validate a manifest for syntax and logical errors without touching GitHub.

VALIDATION CHECKS:

• YAML syntax and structure
• Milestone titles and states (open or closed)
• Label names and colors (6 hex digits, a leading # is accepted)
• Secret names (environment variable syntax, GITHUB_ prefix is reserved)
• Due date formats, reported as warnings since apply skips the creation of
  milestones whose due date does not parse

Examples:
  ghsync validate manifest.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestFile := args[0]

	fmt.Printf("🔍 Validating manifest: %s\n", manifestFile)

	manifest, err := github.LoadManifestFromFile(manifestFile)
	if err != nil {
		var validationErrors github.ValidationErrors
		if errors.As(err, &validationErrors) {
			fmt.Printf("\n❌ Manifest validation failed:\n")
			for _, vErr := range validationErrors {
				if vErr.Value != "" {
					fmt.Printf("  • %s (%s): %s\n", vErr.Field, vErr.Value, vErr.Message)
				} else {
					fmt.Printf("  • %s: %s\n", vErr.Field, vErr.Message)
				}
			}
			return fmt.Errorf("manifest validation failed with %d errors", len(validationErrors))
		}
		return err
	}

	fmt.Printf("✓ YAML syntax and declared resources are valid\n")

	// Due dates that do not parse are warnings: apply proceeds but skips
	// creating those milestones
	warnings := 0
	for _, milestone := range manifest.Milestones {
		if _, err := milestone.ParsedDueDate(); err != nil {
			fmt.Printf("⚠️  Milestone %q: %v (creation will be skipped)\n", milestone.Title, err)
			warnings++
		}
	}

	fmt.Printf("\n📊 Manifest summary:\n")
	if len(manifest.Repositories) > 0 {
		fmt.Printf("  • Repositories: %d\n", len(manifest.Repositories))
	} else {
		fmt.Printf("  • Repositories: all visible to the token\n")
	}
	fmt.Printf("  • Milestones: %d\n", len(manifest.Milestones))
	fmt.Printf("  • Labels: %d\n", len(manifest.Labels))
	fmt.Printf("  • Secrets: %d\n", len(manifest.Secrets))

	if warnings > 0 {
		fmt.Printf("\n✅ Manifest is valid with %d warning(s)\n", warnings)
	} else {
		fmt.Printf("\n✅ Manifest is valid and ready to apply\n")
	}

	fmt.Printf("\n💡 Next steps:\n")
	fmt.Printf("   • Preview changes: ghsync apply %s --dry-run\n", manifestFile)
	fmt.Printf("   • Apply the manifest: ghsync apply %s\n", manifestFile)

	return nil
}
