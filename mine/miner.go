/*
Copyright 2026 The prbench Authors.
SPDX-License-Identifier: Apache-2.0
*/

package mine

import (
	"context"
	"errors"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"

	"prbench.dev/prbench/faults"
	"prbench.dev/prbench/records"
)

// pullService is the slice of the GitHub API the miner touches.
// *github.PullRequestsService satisfies it.
type pullService interface {
	List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
	GetRaw(ctx context.Context, owner, repo string, number int, opts github.RawOptions) (string, *github.Response, error)
}

// Miner lists merged pull requests from one repository and materializes them
// as benchmark inputs, diff included.
type Miner struct {
	pulls pullService
	owner string
	repo  string

	limit        int
	since        time.Time
	minChanged   int
	maxDiffBytes int
}

// Option configures a Miner.
type Option func(*Miner)

// WithLimit caps how many merged PRs are returned. Zero means no cap.
func WithLimit(n int) Option {
	return func(m *Miner) { m.limit = n }
}

// WithSince skips PRs merged before t.
func WithSince(t time.Time) Option {
	return func(m *Miner) { m.since = t }
}

// WithMinChangedFiles skips PRs touching fewer than n files. Trivial PRs
// rarely support a question worth asking.
func WithMinChangedFiles(n int) Option {
	return func(m *Miner) { m.minChanged = n }
}

// WithMaxDiffBytes skips PRs whose raw diff exceeds n bytes. Zero means no
// cap.
func WithMaxDiffBytes(n int) Option {
	return func(m *Miner) { m.maxDiffBytes = n }
}

// NewMiner builds a miner authenticated with a GitHub token.
func NewMiner(ctx context.Context, token, owner, repo string, opts ...Option) (*Miner, error) {
	if token == "" {
		return nil, faults.New(faults.API, "mine.NewMiner", "github token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	return newMinerWith(client.PullRequests, owner, repo, opts...), nil
}

func newMinerWith(pulls pullService, owner, repo string, opts ...Option) *Miner {
	m := &Miner{
		pulls:        pulls,
		owner:        owner,
		repo:         repo,
		minChanged:   1,
		maxDiffBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mine pages through closed PRs newest-first, keeps the merged ones that
// pass the filters, and fetches each kept PR's raw diff.
func (m *Miner) Mine(ctx context.Context) ([]records.PullRequest, error) {
	log := clog.FromContext(ctx)
	listOpts := &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var mined []records.PullRequest
	for {
		prs, resp, err := m.pulls.List(ctx, m.owner, m.repo, listOpts)
		if err != nil {
			return mined, classifyGitHub("mine.Mine", err)
		}
		for _, pr := range prs {
			if m.limit > 0 && len(mined) >= m.limit {
				return mined, nil
			}
			if pr.MergedAt == nil {
				continue
			}
			if !m.since.IsZero() && pr.GetMergedAt().Time.Before(m.since) {
				continue
			}
			rec, err := m.materialize(ctx, pr)
			if err != nil {
				return mined, err
			}
			if rec == nil {
				continue
			}
			mined = append(mined, *rec)
		}
		if resp.NextPage == 0 || (m.limit > 0 && len(mined) >= m.limit) {
			return mined, nil
		}
		listOpts.Page = resp.NextPage
		log.Debugf("mined %d PRs so far, fetching page %d", len(mined), resp.NextPage)
	}
}

// materialize fetches the diff and builds the record. A nil record with nil
// error means the PR was filtered out.
func (m *Miner) materialize(ctx context.Context, pr *github.PullRequest) (*records.PullRequest, error) {
	log := clog.FromContext(ctx)
	number := pr.GetNumber()

	diff, _, err := m.pulls.GetRaw(ctx, m.owner, m.repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return nil, classifyGitHub("mine.materialize", err)
	}
	if m.maxDiffBytes > 0 && len(diff) > m.maxDiffBytes {
		log.Infof("skipping PR #%d: diff is %d bytes", number, len(diff))
		return nil, nil
	}

	stats, err := DiffStats(diff)
	if err != nil {
		log.Warnf("skipping PR #%d: unparseable diff: %v", number, err)
		return nil, nil
	}
	if len(stats.Paths) < m.minChanged {
		log.Infof("skipping PR #%d: only %d changed files", number, len(stats.Paths))
		return nil, nil
	}

	rec := records.PullRequest{
		Number:       number,
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		Author:       pr.GetUser().GetLogin(),
		URL:          pr.GetHTMLURL(),
		MergedAt:     pr.GetMergedAt().Time,
		BaseRef:      pr.GetBase().GetRef(),
		BaseCommit:   pr.GetBase().GetSHA(),
		Diff:         diff,
		Additions:    stats.Additions,
		Deletions:    stats.Deletions,
		ChangedFiles: len(stats.Paths),
	}
	if err := rec.Validate(); err != nil {
		log.Warnf("skipping PR #%d: %v", number, err)
		return nil, nil
	}
	return &rec, nil
}

// classifyGitHub separates rate limiting, which a caller can wait out, from
// everything else the API returns.
func classifyGitHub(op string, err error) error {
	var rate *github.RateLimitError
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &rate) || errors.As(err, &abuse) {
		return faults.Transient(op, err)
	}
	return faults.Wrap(faults.API, op, err)
}
