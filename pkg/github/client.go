package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub API client with the provided token
func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// splitRepo splits a full "owner/name" repository identifier
func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", NewGitHubError(ErrorTypeValidation,
			fmt.Sprintf("invalid repository %q, expected owner/name", repo), nil)
	}
	return owner, name, nil
}

// GetLabel retrieves a single label by name
func (c *Client) GetLabel(ctx context.Context, repo, name string) (*Label, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	ghLabel, _, err := c.client.Issues.GetLabel(ctx, owner, repoName, name)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("label %q (%s)", name, repo))
	}

	return convertGitHubLabel(ghLabel), nil
}

// ListLabels lists all labels in a repository
func (c *Client) ListLabels(ctx context.Context, repo string) ([]Label, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.ListOptions{PerPage: 100}

	var allLabels []Label
	for {
		labels, resp, err := c.client.Issues.ListLabels(ctx, owner, repoName, opts)
		if err != nil {
			return nil, WrapGitHubError(err, fmt.Sprintf("labels (%s)", repo))
		}

		for _, ghLabel := range labels {
			allLabels = append(allLabels, *convertGitHubLabel(ghLabel))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allLabels, nil
}

// CreateLabel creates a new label
func (c *Client) CreateLabel(ctx context.Context, repo string, label LabelSpec) (*Label, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	ghLabel := &github.Label{
		Name:  github.String(label.Name),
		Color: github.String(strings.TrimPrefix(label.Color, "#")),
	}
	if label.Description != "" {
		ghLabel.Description = github.String(label.Description)
	}

	created, _, err := c.client.Issues.CreateLabel(ctx, owner, repoName, ghLabel)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("label %q (%s)", label.Name, repo))
	}

	return convertGitHubLabel(created), nil
}

// UpdateLabel edits the label currently named name. The declared name in
// label is sent as the new name, so an existing label whose name differs
// only in case gets renamed to the declared casing.
func (c *Client) UpdateLabel(ctx context.Context, repo, name string, label LabelSpec) (*Label, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	ghLabel := &github.Label{
		Name:        github.String(label.Name),
		Color:       github.String(strings.TrimPrefix(label.Color, "#")),
		Description: github.String(label.Description),
	}

	updated, _, err := c.client.Issues.EditLabel(ctx, owner, repoName, name, ghLabel)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("label %q (%s)", name, repo))
	}

	return convertGitHubLabel(updated), nil
}

// DeleteLabel deletes a label by name
func (c *Client) DeleteLabel(ctx context.Context, repo, name string) error {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return err
	}

	if _, err := c.client.Issues.DeleteLabel(ctx, owner, repoName, name); err != nil {
		return WrapGitHubError(err, fmt.Sprintf("label %q (%s)", name, repo))
	}

	return nil
}

// ListMilestones lists all milestones in a repository regardless of state
func (c *Client) ListMilestones(ctx context.Context, repo string) ([]Milestone, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allMilestones []Milestone
	for {
		milestones, resp, err := c.client.Issues.ListMilestones(ctx, owner, repoName, opts)
		if err != nil {
			return nil, WrapGitHubError(err, fmt.Sprintf("milestones (%s)", repo))
		}

		for _, ghMilestone := range milestones {
			allMilestones = append(allMilestones, *convertGitHubMilestone(ghMilestone))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allMilestones, nil
}

// CreateMilestone creates a new milestone. dueOn is nil when the manifest
// declares no due date or the declared one could not be parsed.
func (c *Client) CreateMilestone(ctx context.Context, repo string, milestone MilestoneSpec, dueOn *time.Time) (*Milestone, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	ghMilestone := &github.Milestone{
		Title: github.String(milestone.Title),
	}
	if milestone.Description != "" {
		ghMilestone.Description = github.String(milestone.Description)
	}
	if milestone.State != "" {
		ghMilestone.State = github.String(milestone.State)
	}
	if dueOn != nil {
		ghMilestone.DueOn = &github.Timestamp{Time: *dueOn}
	}

	created, _, err := c.client.Issues.CreateMilestone(ctx, owner, repoName, ghMilestone)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("milestone %q (%s)", milestone.Title, repo))
	}

	return convertGitHubMilestone(created), nil
}

// UpdateMilestone edits an existing milestone by number. The description is
// always sent so one removed from the manifest gets cleared on the server,
// while an undeclared state and a nil dueOn are omitted and keep their
// current value.
func (c *Client) UpdateMilestone(ctx context.Context, repo string, number int, milestone MilestoneSpec, dueOn *time.Time) (*Milestone, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	ghMilestone := &github.Milestone{
		Title:       github.String(milestone.Title),
		Description: github.String(milestone.Description),
	}
	if milestone.State != "" {
		ghMilestone.State = github.String(milestone.State)
	}
	if dueOn != nil {
		ghMilestone.DueOn = &github.Timestamp{Time: *dueOn}
	}

	updated, _, err := c.client.Issues.EditMilestone(ctx, owner, repoName, number, ghMilestone)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("milestone %q (%s)", milestone.Title, repo))
	}

	return convertGitHubMilestone(updated), nil
}

// DeleteMilestone deletes a milestone by number
func (c *Client) DeleteMilestone(ctx context.Context, repo string, number int) error {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return err
	}

	if _, err := c.client.Issues.DeleteMilestone(ctx, owner, repoName, number); err != nil {
		return WrapGitHubError(err, fmt.Sprintf("milestone #%d (%s)", number, repo))
	}

	return nil
}

// GetSecretPublicKey retrieves the public key used to seal Actions secret
// values for a repository
func (c *Client) GetSecretPublicKey(ctx context.Context, repo string) (*SecretKey, error) {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	key, _, err := c.client.Actions.GetRepoPublicKey(ctx, owner, repoName)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("secret public key (%s)", repo))
	}

	return &SecretKey{
		KeyID: key.GetKeyID(),
		Key:   key.GetKey(),
	}, nil
}

// PutSecret creates or updates an Actions secret with an already sealed value
func (c *Client) PutSecret(ctx context.Context, repo, name, keyID, encryptedValue string) error {
	owner, repoName, err := splitRepo(repo)
	if err != nil {
		return err
	}

	secret := &github.EncryptedSecret{
		Name:           name,
		KeyID:          keyID,
		EncryptedValue: encryptedValue,
	}

	if _, err := c.client.Actions.CreateOrUpdateRepoSecret(ctx, owner, repoName, secret); err != nil {
		return WrapGitHubError(err, fmt.Sprintf("secret %s (%s)", name, repo))
	}

	return nil
}

// ListRepositories lists the full names of all repositories the token can
// see, or all repositories of org when it is set
func (c *Client) ListRepositories(ctx context.Context, org string) ([]string, error) {
	var allRepos []string

	if org != "" {
		opts := &github.RepositoryListByOrgOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		}
		for {
			repos, resp, err := c.client.Repositories.ListByOrg(ctx, org, opts)
			if err != nil {
				return nil, WrapGitHubError(err, fmt.Sprintf("repository listing for organization %s", org))
			}

			for _, repo := range repos {
				allRepos = append(allRepos, repo.GetFullName())
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}

		return allRepos, nil
	}

	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		repos, resp, err := c.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, WrapGitHubError(err, "repository listing")
		}

		for _, repo := range repos {
			allRepos = append(allRepos, repo.GetFullName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

// CheckRateLimit returns the current core API rate limit status
func (c *Client) CheckRateLimit(ctx context.Context) (*RateInfo, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, WrapGitHubError(err, "rate limit")
	}

	core := limits.GetCore()
	if core == nil {
		return nil, NewGitHubError(ErrorTypeUnknown, "rate limit response missing core limits", nil)
	}

	return &RateInfo{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}

// convertGitHubLabel converts a GitHub API label to our internal type
func convertGitHubLabel(label *github.Label) *Label {
	return &Label{
		Name:        label.GetName(),
		Color:       label.GetColor(),
		Description: label.GetDescription(),
	}
}

// convertGitHubMilestone converts a GitHub API milestone to our internal type
func convertGitHubMilestone(milestone *github.Milestone) *Milestone {
	m := &Milestone{
		Number:      milestone.GetNumber(),
		Title:       milestone.GetTitle(),
		Description: milestone.GetDescription(),
		State:       milestone.GetState(),
	}
	if milestone.DueOn != nil {
		t := milestone.DueOn.Time
		m.DueOn = &t
	}
	return m
}
