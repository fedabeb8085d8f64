package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ottawa-housing/models"
	"ottawa-housing/utils"
)

// WeeklyReviewMarker identifies the weekly market posts among a user's
// submissions.
const WeeklyReviewMarker = "The Ottawa Real Estate Market: Week In Review"

// TargetSubreddit is where the canonical copy of each post lives; crossposts
// elsewhere are ignored.
const TargetSubreddit = "ottawa"

// PostSource yields the submissions to consider for ingestion.
type PostSource interface {
	FetchPosts(ctx context.Context) ([]*models.RawPost, error)
}

// ReportStore persists parsed weekly reports.
type ReportStore interface {
	HasDate(ctx context.Context, date string) (bool, error)
	InsertReport(ctx context.Context, report *models.WeeklyReport) error
}

// RawPostWriter records unparsed posts for auditing.
type RawPostWriter interface {
	WriteRaw(posts []*models.RawPost) error
}

// IngestOptions tune which posts are processed and how.
type IngestOptions struct {
	Cutoff      time.Time
	MaxPosts    int
	Concurrency int
}

// IngestService drives the fetch, filter, parse and store pipeline.
type IngestService struct {
	source PostSource
	store  ReportStore
	raw    RawPostWriter
	parser *Parser
	opts   IngestOptions
	logger *utils.Logger
}

// NewIngestService wires an IngestService. raw may be nil.
func NewIngestService(source PostSource, store ReportStore, raw RawPostWriter, opts IngestOptions, logger *utils.Logger) *IngestService {
	return &IngestService{
		source: source,
		store:  store,
		raw:    raw,
		parser: NewParser(logger),
		opts:   opts,
		logger: logger,
	}
}

// FilterPosts keeps weekly review posts from the target subreddit created on
// or after cutoff, newest first, truncated to maxPosts when it is positive.
func FilterPosts(posts []*models.RawPost, cutoff time.Time, maxPosts int) []*models.RawPost {
	out := make([]*models.RawPost, 0, len(posts))
	for _, p := range posts {
		if !strings.Contains(p.Title, WeeklyReviewMarker) {
			continue
		}
		if !strings.EqualFold(p.Subreddit, TargetSubreddit) {
			continue
		}
		if !cutoff.IsZero() && p.CreatedUTC.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedUTC.After(out[j].CreatedUTC)
	})
	if maxPosts > 0 && len(out) > maxPosts {
		out = out[:maxPosts]
	}
	return out
}

// Run fetches, filters and stores every new weekly report.
func (s *IngestService) Run(ctx context.Context) (*models.IngestResult, error) {
	posts, err := s.source.FetchPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: fetch posts: %w", err)
	}

	result := &models.IngestResult{Fetched: len(posts)}
	targets := FilterPosts(posts, s.opts.Cutoff, s.opts.MaxPosts)
	result.Matched = len(targets)

	if s.opts.MaxPosts > 0 {
		s.logger.Info("[ingest] Limiting to %d posts", s.opts.MaxPosts)
	}
	s.logger.Info("[ingest] Found %d matching posts out of %d fetched", len(targets), len(posts))

	if s.raw != nil && len(targets) > 0 {
		if err := s.raw.WriteRaw(targets); err != nil {
			s.logger.Warn("[ingest] Raw CSV write failed: %v", err)
		}
	}

	// Dates are claimed up front so duplicate posts for the same week are
	// skipped deterministically, newest first.
	claimed := utils.NewDateSet()
	var mu sync.Mutex
	pool := utils.NewWorkerPool(s.opts.Concurrency, 0)

	for _, post := range targets {
		if ctx.Err() != nil {
			break
		}
		date := post.PostDate()
		if !claimed.Add(date) {
			s.logger.Debug("[ingest] Duplicate post for %s skipped: %s", date, post.ID)
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			continue
		}

		pool.Submit(func() {
			outcome := s.process(ctx, post)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeProcessed:
				result.Processed++
			case outcomeSkipped:
				result.Skipped++
			default:
				result.Failed++
			}
		})
	}
	pool.Wait()

	s.logger.Info("[ingest] Done: %d weeks claimed, %d processed, %d skipped, %d failed",
		claimed.Size(), result.Processed, result.Skipped, result.Failed)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("ingest: %w", err)
	}
	return result, nil
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *IngestService) process(ctx context.Context, post *models.RawPost) outcome {
	date := post.PostDate()

	exists, err := s.store.HasDate(ctx, date)
	if err != nil {
		s.logger.Error("[ingest] Lookup for %s failed: %v", date, err)
		return outcomeFailed
	}
	if exists {
		s.logger.Info("[ingest] Post from %s already processed, skipping", date)
		return outcomeSkipped
	}

	s.logger.Info("[ingest] Processing post from %s", date)
	report := s.parser.Parse(post)
	if report.Empty() {
		return outcomeFailed
	}

	if err := s.store.InsertReport(ctx, report); err != nil {
		s.logger.Error("[ingest] Insert for %s failed: %v", date, err)
		return outcomeFailed
	}
	s.logger.Info("[ingest] Successfully inserted data for %s", date)
	return outcomeProcessed
}
