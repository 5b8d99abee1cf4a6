package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/docpress/internal"
	"github.com/starford/docpress/internal/reconcile"
	pkgconfig "github.com/starford/docpress/pkg/config"
)

var version = "dev"

var errFilesFailed = errors.New("some documents failed")

// loadConfig reads the optional config file, applies positional arguments
// and flags on top, then validates the result.
func loadConfig(cmd *cli.Command, needSource bool) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.ReadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	args := cmd.Args()
	if needSource {
		if v := args.Get(0); v != "" {
			cfg.Source.Path = v
		}
		if v := args.Get(1); v != "" {
			cfg.Output.Path = v
		}
	} else if v := args.Get(0); v != "" {
		cfg.Output.Path = v
	}

	if cmd.IsSet("format") {
		cfg.Output.Format = cmd.String("format")
	}
	if cmd.IsSet("layout") {
		cfg.Output.Layout = cmd.String("layout")
	}
	if cmd.IsSet("journal") {
		cfg.Journal.Path = cmd.String("journal")
	}
	if cmd.IsSet("prune-on-failure") {
		cfg.Output.PruneOnFailure = cmd.Bool("prune-on-failure")
	}
	if cmd.IsSet("watch") {
		cfg.Watch.Enabled = cmd.Bool("watch")
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}

	if !needSource && cfg.Source.Path == "" {
		cfg.Source.Path = "."
	}
	if err := pkgconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	if n := cmd.Args().Len(); n != 2 && !(n == 0 && cmd.String("config") != "") {
		return cli.Exit("usage: docpress [flags] <sourcedir> <outputdir>", 2)
	}
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	failed := false
	report, err := internal.Sync(ctx,
		internal.WithConfig(cfg),
		internal.WithDryRun(cmd.Bool("dry-run")),
		internal.WithReportHandler(func(r *reconcile.Report, _ error) {
			if r == nil {
				return
			}
			failed = len(r.Failed()) > 0
			printReport(os.Stdout, r, asJSON)
		}),
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if report != nil && failed {
		return errFilesFailed
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	return internal.Serve(ctx, internal.WithConfig(cfg))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func runList(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	items, err := internal.ListPosts(ctx, internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return writeJSON(os.Stdout, items)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tTITLE\tAUTHOR\tCATEGORIES")
	for _, p := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", p.File, p.Title, p.Author, p.Categories)
	}
	return tw.Flush()
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	runs, err := internal.History(ctx, int(cmd.Int("limit")), internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return writeJSON(os.Stdout, runs)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDRY RUN\tCONVERTED\tSKIPPED\tDELETED\tRETAINED\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%d\t%d\t%d\t%d\t%d\n",
			r.ID, r.Started.Local().Format("2006-01-02 15:04:05"), r.DryRun,
			r.Converted, r.Skipped, r.Deleted, r.Retained, r.Failed)
	}
	return tw.Flush()
}

func printReport(w io.Writer, r *reconcile.Report, asJSON bool) {
	if asJSON {
		_ = writeJSON(w, r)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range r.Outcomes {
		name := o.Source
		if name == "" {
			name = o.Output
		}
		line := fmt.Sprintf("%s\t%s", o.Action, name)
		if o.Source != "" && o.Output != "" {
			line += "\t-> " + o.Output
		}
		if o.Reason != "" {
			line += "\t(" + o.Reason + ")"
		}
		fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()

	prefix := ""
	if r.DryRun {
		prefix = "dry run: "
	}
	fmt.Fprintf(w, "%s%d converted, %d skipped, %d deleted, %d retained, %d failed\n", prefix,
		r.Count(reconcile.ActionConverted), r.Count(reconcile.ActionSkipped),
		r.Count(reconcile.ActionDeleted), r.Count(reconcile.ActionRetained),
		r.Count(reconcile.ActionFailed))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// passFlags returns fresh copies of the flags shared by every command that
// resolves a configuration.
func passFlags(extra ...cli.Flag) []cli.Flag {
	return append(extra,
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to an optional config file",
			Sources: cli.EnvVars("DOCPRESS_CONFIG_FILE"),
		},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable debug logging"},
		&cli.StringFlag{Name: "format", Usage: "Output format: html or markdown"},
		&cli.StringFlag{Name: "layout", Usage: "Front matter layout value"},
		&cli.StringFlag{Name: "journal", Usage: "SQLite run journal path (empty disables)", Sources: cli.EnvVars("DOCPRESS_JOURNAL")},
		&cli.BoolFlag{Name: "prune-on-failure", Usage: "Delete orphaned posts even when a document failed"},
	)
}

func main() {
	cmd := &cli.Command{
		Name:      "docpress",
		Usage:     "Synchronize .docx documents into static-site posts",
		Version:   version,
		ArgsUsage: "<sourcedir> <outputdir>",
		Action:    runSync,
		Flags: passFlags(
			&cli.BoolFlag{Name: "json", Usage: "Print the report as JSON", Local: true},
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "Report actions without writing or deleting", Local: true},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Keep running and sync on every change", Local: true},
		),
		Commands: []*cli.Command{
			{
				Name:      "serve",
				Usage:     "Run the preview server with live sync",
				ArgsUsage: "<sourcedir> <outputdir>",
				Action:    runServe,
				Flags: passFlags(
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port", Sources: cli.EnvVars("DOCPRESS_PORT")},
				),
			},
			{
				Name:      "mcp",
				Usage:     "Serve docpress tools over MCP on stdio",
				ArgsUsage: "<sourcedir> <outputdir>",
				Action:    runMCP,
				Flags:     passFlags(),
			},
			{
				Name:      "list",
				Usage:     "List generated posts",
				ArgsUsage: "<outputdir>",
				Action:    runList,
				Flags:     passFlags(&cli.BoolFlag{Name: "json", Usage: "Print JSON"}),
			},
			{
				Name:   "history",
				Usage:  "Show journaled sync passes",
				Action: runHistory,
				Flags: passFlags(
					&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of passes"},
				),
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Run(ctx, os.Args)
	stop()
	if err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
