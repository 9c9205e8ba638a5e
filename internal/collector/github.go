package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
	"github.com/IstiN/dmtools-sub007/internal/metric"
)

// githubSource collects items from one GitHub repository. The "kind" param
// selects what is fetched: "commits", "pulls" (opened) or "pulls-merged".
type githubSource struct {
	name        string
	owner       string
	repo        string
	kind        string
	client      *github.Client
	rateLimiter RateLimiter
}

// NewGitHubSource creates a source adapter for a GitHub repository.
func NewGitHubSource(cfg domain.SourceConfig, token string) (Source, error) {
	owner := cfg.Params["owner"]
	repo := cfg.Params["repo"]
	if owner == "" || repo == "" {
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("data source %q: github sources require owner and repo params", cfg.Name))
	}
	kind := cfg.Params["kind"]
	if kind == "" {
		kind = "commits"
	}
	switch kind {
	case "commits", "pulls", "pulls-merged":
	default:
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("data source %q: unknown github kind %q", cfg.Name, kind))
	}
	if token == "" {
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("data source %q: GITHUB_TOKEN is required for github sources", cfg.Name))
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &githubSource{
		name:        cfg.Name,
		owner:       owner,
		repo:        repo,
		kind:        kind,
		client:      github.NewClient(tc),
		rateLimiter: NewRateLimiter(),
	}, nil
}

func (s *githubSource) Name() string { return s.name }

// Collect streams the repository's items through the metric rule. Retries and
// pacing are handled here; any terminal API error propagates to the caller.
func (s *githubSource) Collect(ctx context.Context, rule metric.Rule, fn CollectFunc) error {
	switch s.kind {
	case "commits":
		return s.collectCommits(ctx, rule, fn)
	default:
		return s.collectPulls(ctx, rule, fn)
	}
}

func (s *githubSource) collectCommits(ctx context.Context, rule metric.Rule, fn CollectFunc) error {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		commits, resp, err := s.client.Repositories.ListCommits(ctx, s.owner, s.repo, opts)
		if err != nil {
			// Empty repositories report 409
			if resp != nil && resp.StatusCode == 409 {
				return nil
			}
			return fmt.Errorf("failed to list commits for %s/%s: %w", s.owner, s.repo, err)
		}
		s.updateRateLimitFromResponse(resp)

		for _, commit := range commits {
			if err := s.emit(commitItem(commit), rule, fn); err != nil {
				return err
			}
		}

		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}

func (s *githubSource) collectPulls(ctx context.Context, rule metric.Rule, fn CollectFunc) error {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		prs, resp, err := s.client.PullRequests.List(ctx, s.owner, s.repo, opts)
		if err != nil {
			return fmt.Errorf("failed to list pull requests for %s/%s: %w", s.owner, s.repo, err)
		}
		s.updateRateLimitFromResponse(resp)

		for _, pr := range prs {
			var when time.Time
			if s.kind == "pulls-merged" {
				if pr.MergedAt == nil {
					continue
				}
				when = pr.MergedAt.Time
			} else {
				when = pr.GetCreatedAt().Time
			}

			item := domain.Item{
				Key:       fmt.Sprintf("%s/%s#%d", s.owner, s.repo, pr.GetNumber()),
				Actor:     pr.User.GetLogin(),
				Timestamp: when,
				Numbers: map[string]float64{
					"comments": float64(pr.GetComments()),
				},
			}
			metadata, _ := json.Marshal(map[string]any{
				"number": pr.GetNumber(),
				"title":  pr.GetTitle(),
				"state":  pr.GetState(),
			})
			item.Raw = metadata

			if err := s.emit(item, rule, fn); err != nil {
				return err
			}
		}

		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}

// commitItem converts one listed commit into a raw item. The author falls back
// from the GitHub account login to the git author name. Commits with no commit
// payload carry a zero timestamp, so the metric rules drop them.
func commitItem(commit *github.RepositoryCommit) domain.Item {
	author := ""
	if commit.Author != nil {
		author = commit.Author.GetLogin()
	} else if commit.Commit != nil && commit.Commit.Author != nil {
		author = commit.Commit.Author.GetName()
	}

	var when time.Time
	if commit.Commit != nil {
		when = commit.Commit.Author.GetDate().Time
	}

	metadata, _ := json.Marshal(map[string]string{
		"sha":     commit.GetSHA(),
		"message": commit.Commit.GetMessage(),
		"author":  author,
	})

	return domain.Item{
		Key:       commit.GetSHA(),
		Actor:     author,
		Timestamp: when,
		Raw:       metadata,
	}
}

func (s *githubSource) emit(item domain.Item, rule metric.Rule, fn CollectFunc) error {
	events, ok := rule.Apply(item)
	if !ok || len(events) == 0 {
		return nil
	}
	return fn(item.Key, events, item.Raw)
}

// updateRateLimitFromResponse updates the rate limiter from API response headers.
func (s *githubSource) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Remaining >= 0 {
		s.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}
