// Package github implements declarative synchronization of GitHub milestones,
// labels, and Actions secrets for ghsync. A YAML manifest describes the
// desired state; reconcilers diff it against the remote state of each
// repository and issue the minimal set of writes to converge, reporting a
// per-item outcome (created, updated, skipped, removed, failed).
//
// The package includes:
// - APIClient interface wrapping the GitHub REST API
// - Label, milestone, and secret reconcilers
// - Manifest loading and validation
// - An orchestrator that drives a full run across repositories
package github
