// Package postservice coordinates reconciliation passes, the run journal and
// post listings for every docpress surface (CLI, HTTP, MCP).
package postservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/docpress/internal/apperr"
	"github.com/starford/docpress/internal/docx"
	"github.com/starford/docpress/internal/journal"
	"github.com/starford/docpress/internal/models"
	"github.com/starford/docpress/internal/naming"
	"github.com/starford/docpress/internal/posts"
	"github.com/starford/docpress/internal/reconcile"
	"github.com/starford/docpress/internal/storage"
)

// Observer receives outcomes and finished reports as passes run.
type Observer interface {
	PublishOutcome(o reconcile.Outcome)
	PublishReport(r *reconcile.Report)
}

// Service coordinates storage, conversion and the journal.
type Service struct {
	source  storage.Provider
	output  storage.Provider
	conv    docx.Converter
	opts    reconcile.Options
	journal *journal.DB
	logger  *slog.Logger

	mu       sync.Mutex // serializes passes
	observer Observer
}

// NewService creates a new post service. db may be nil to disable the journal.
func NewService(source, output storage.Provider, conv docx.Converter, opts reconcile.Options, db *journal.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:  source,
		output:  output,
		conv:    conv,
		opts:    opts,
		journal: db,
		logger:  logger,
	}
}

// SetObserver registers an observer for subsequent passes.
func (s *Service) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// Sync runs one reconciliation pass. Passes never overlap; a caller arriving
// while another pass runs waits for it to finish. dryRun is combined with the
// configured mode, so a dry-run service never writes.
func (s *Service) Sync(ctx context.Context, dryRun bool) (*reconcile.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.opts
	opts.DryRun = opts.DryRun || dryRun
	if s.observer != nil {
		observer := s.observer
		opts.OnOutcome = func(o reconcile.Outcome) {
			if s.opts.OnOutcome != nil {
				s.opts.OnOutcome(o)
			}
			observer.PublishOutcome(o)
		}
	}

	report, err := reconcile.New(s.source, s.output, s.conv, opts, s.logger).Run(ctx)

	if s.journal != nil {
		if _, jerr := s.journal.Record(report, s.source.Root(), s.output.Root(), err); jerr != nil {
			s.logger.Warn("journal: record failed", slog.String("error", jerr.Error()))
		}
	}
	if s.observer != nil {
		s.observer.PublishReport(report)
	}
	return report, err
}

// Posts lists the posts currently in the output directory.
func (s *Service) Posts(_ context.Context) ([]models.Post, error) {
	return posts.List(s.output, s.opts.OutputExt())
}

// ReadPost returns the content of one generated post. Names that are not
// generated post names yield apperr.ErrNotFound.
func (s *Service) ReadPost(_ context.Context, name string) ([]byte, error) {
	if _, ok := naming.Parse(name, s.opts.OutputExt()); !ok {
		return nil, fmt.Errorf("postservice: %s: %w", name, apperr.ErrNotFound)
	}
	return s.output.Read(name)
}

// Runs returns up to limit journaled passes, newest first. It returns an
// empty list when the journal is disabled.
func (s *Service) Runs(_ context.Context, limit int) ([]journal.Run, error) {
	if s.journal == nil {
		return []journal.Run{}, nil
	}
	runs, err := s.journal.Recent(limit)
	return nonNilSlice(runs), err
}

// RunOutcomes returns the recorded outcomes of one journaled pass.
func (s *Service) RunOutcomes(_ context.Context, id int64) ([]reconcile.Outcome, error) {
	if s.journal == nil {
		return []reconcile.Outcome{}, nil
	}
	out, err := s.journal.Outcomes(id)
	return nonNilSlice(out), err
}

// SourceRoot returns the absolute source directory.
func (s *Service) SourceRoot() string {
	return s.source.Root()
}

// OutputRoot returns the absolute output directory.
func (s *Service) OutputRoot() string {
	return s.output.Root()
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
