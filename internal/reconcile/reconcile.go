// Package reconcile brings an output directory of posts in line with a
// directory of source documents.
//
// A pass fingerprints every source, skips sources whose fingerprint already
// names an output, converts the rest and deletes outputs that no source
// claims. Nothing is remembered between passes.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/docpress/internal/apperr"
	"github.com/starford/docpress/internal/checksum"
	"github.com/starford/docpress/internal/docx"
	"github.com/starford/docpress/internal/frontmatter"
	"github.com/starford/docpress/internal/metadata"
	"github.com/starford/docpress/internal/models"
	"github.com/starford/docpress/internal/naming"
	"github.com/starford/docpress/internal/storage"
)

// Output formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Defaults for Options.
const (
	DefaultSourceExt  = ".docx"
	DefaultTempPrefix = "~$"
)

// Options configures a Reconciler.
type Options struct {
	DryRun bool
	// SourceExt selects source documents by suffix, case-insensitively.
	SourceExt string
	// TempPrefix excludes editor lock files such as "~$post.docx".
	TempPrefix string
	Format     string
	Layout     string
	// PruneOnFailure deletes orphaned outputs even when a source failed in
	// the same pass. When false such outputs are retained, since one of them
	// may be the last good rendering of the failed source.
	PruneOnFailure bool
	// OnOutcome, if set, is called after every outcome is recorded.
	OnOutcome func(Outcome)
}

// OutputExt returns the extension of generated posts for the format.
func (o Options) OutputExt() string {
	if o.Format == FormatMarkdown {
		return ".md"
	}
	return naming.DefaultExt
}

func (o Options) withDefaults() Options {
	if o.SourceExt == "" {
		o.SourceExt = DefaultSourceExt
	}
	if o.TempPrefix == "" {
		o.TempPrefix = DefaultTempPrefix
	}
	if o.Format == "" {
		o.Format = FormatHTML
	}
	if o.Layout == "" {
		o.Layout = metadata.DefaultLayout
	}
	return o
}

// Reconciler runs reconciliation passes between a source and an output directory.
type Reconciler struct {
	source storage.Provider
	output storage.Provider
	conv   docx.Converter
	opts   Options
	logger *slog.Logger
}

// New creates a Reconciler.
func New(source, output storage.Provider, conv docx.Converter, opts Options, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		source: source,
		output: output,
		conv:   conv,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// pass holds the state of a single Run.
type pass struct {
	*Reconciler
	report     *Report
	candidates *candidates
	// claimed maps fingerprints handled this pass to their output name.
	claimed map[string]string
	failed  bool
}

// Run performs one reconciliation pass. Per-file failures are recorded in
// the report and do not stop the pass. A failed write stops the pass before
// the sweep and is returned as an error wrapping apperr.ErrWrite, together
// with the partial report.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	p := &pass{
		Reconciler: r,
		report:     &Report{DryRun: r.opts.DryRun, Started: time.Now()},
		claimed:    make(map[string]string),
	}
	err := p.run(ctx)
	p.report.Finished = time.Now()

	r.logger.Info("sync: pass finished",
		slog.Bool("dry_run", r.opts.DryRun),
		slog.Int("converted", p.report.Count(ActionConverted)),
		slog.Int("skipped", p.report.Count(ActionSkipped)),
		slog.Int("deleted", p.report.Count(ActionDeleted)),
		slog.Int("retained", p.report.Count(ActionRetained)),
		slog.Int("failed", p.report.Count(ActionFailed)),
		slog.Duration("elapsed", p.report.Finished.Sub(p.report.Started)))
	return p.report, err
}

func (p *pass) run(ctx context.Context) error {
	sources, err := p.source.List(p.opts.SourceExt, p.opts.TempPrefix)
	if err != nil {
		return fmt.Errorf("reconcile: list sources: %w", err)
	}
	outputs, err := p.output.List(p.opts.OutputExt(), "")
	if err != nil {
		return fmt.Errorf("reconcile: list outputs: %w", err)
	}
	p.candidates = newCandidates(outputs, p.opts.OutputExt())

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.process(src); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	p.sweep()
	return nil
}

// process handles one source file. Only fatal errors are returned.
func (p *pass) process(src models.FileEntry) error {
	doc, data, err := p.fingerprint(src.Name)
	if err != nil {
		p.fail(src.Name, "", err)
		return nil
	}
	name := naming.New(doc.Hash, doc.Created, p.opts.OutputExt())

	if out, ok := p.claimed[doc.Hash]; ok {
		p.record(Outcome{Action: ActionSkipped, Source: src.Name, Output: out, Reason: "duplicate content"})
		return nil
	}
	if out, ok := p.candidates.take(doc.Hash, name.String()); ok {
		p.claimed[doc.Hash] = out
		p.record(Outcome{Action: ActionSkipped, Source: src.Name, Output: out, Reason: "unchanged"})
		return nil
	}

	rec, content, err := p.render(data)
	if err != nil {
		p.fail(src.Name, name.String(), err)
		return nil
	}

	if !p.opts.DryRun {
		if err := p.output.Write(name.String(), []byte(content)); err != nil {
			err = fmt.Errorf("reconcile: write %s: %w: %w", name, apperr.ErrWrite, err)
			p.fail(src.Name, name.String(), err)
			return err
		}
	}
	p.claimed[doc.Hash] = name.String()
	p.record(Outcome{
		Action:  ActionConverted,
		Source:  src.Name,
		Output:  name.String(),
		Title:   rec.Title,
		Content: content,
	})
	return nil
}

func (p *pass) fingerprint(name string) (models.SourceDocument, []byte, error) {
	data, err := p.source.Read(name)
	if err != nil {
		return models.SourceDocument{}, nil, fmt.Errorf("%w: %w", apperr.ErrRead, err)
	}
	created, err := p.source.Created(name)
	if err != nil {
		return models.SourceDocument{}, nil, fmt.Errorf("%w: %w", apperr.ErrRead, err)
	}
	return models.SourceDocument{Name: name, Hash: checksum.Sum(data), Created: created}, data, nil
}

// render converts document bytes into the final post content.
func (p *pass) render(data []byte) (*metadata.Record, string, error) {
	markup, err := p.conv.Convert(data)
	if err != nil {
		if !errors.Is(err, apperr.ErrConversion) {
			err = fmt.Errorf("%w: %w", apperr.ErrConversion, err)
		}
		return nil, "", err
	}

	rec, body, err := metadata.Extract(markup, p.opts.Layout)
	if err != nil {
		return nil, "", err
	}

	if p.opts.Format == FormatMarkdown {
		if body, err = docx.ToMarkdown(body); err != nil {
			return nil, "", fmt.Errorf("%w: %w", apperr.ErrConversion, err)
		}
	}

	content, err := frontmatter.Compose(rec, body)
	if err != nil {
		return nil, "", err
	}
	return rec, content, nil
}

// sweep deletes outputs no source claimed this pass.
func (p *pass) sweep() {
	orphans := p.candidates.remaining()
	hold := p.failed && !p.opts.PruneOnFailure
	if hold && len(orphans) > 0 {
		p.logger.Warn("sync: orphans retained because a source failed; fix the source or enable prune_on_failure",
			slog.Int("retained", len(orphans)),
			slog.Int("failed", p.report.Count(ActionFailed)))
	}
	for _, name := range orphans {
		if hold {
			p.record(Outcome{Action: ActionRetained, Output: name, Reason: "a source failed this pass"})
			continue
		}
		if !p.opts.DryRun {
			if err := p.output.Delete(name); err != nil {
				p.fail("", name, err)
				continue
			}
		}
		p.record(Outcome{Action: ActionDeleted, Output: name})
	}
}

func (p *pass) fail(source, output string, err error) {
	p.failed = true
	p.record(Outcome{Action: ActionFailed, Source: source, Output: output, Reason: err.Error(), Err: err})
}

func (p *pass) record(o Outcome) {
	p.report.Outcomes = append(p.report.Outcomes, o)

	attrs := []any{slog.Bool("dry_run", p.opts.DryRun)}
	if o.Source != "" {
		attrs = append(attrs, slog.String("source", o.Source))
	}
	if o.Output != "" {
		attrs = append(attrs, slog.String("output", o.Output))
	}
	switch o.Action {
	case ActionFailed:
		attrs = append(attrs, slog.String("error", o.Reason))
		p.logger.Warn("sync: failed", attrs...)
	case ActionSkipped:
		p.logger.Debug("sync: skipped", append(attrs, slog.String("reason", o.Reason))...)
	default:
		p.logger.Info("sync: "+string(o.Action), attrs...)
	}

	if p.opts.OnOutcome != nil {
		p.opts.OnOutcome(o)
	}
}
