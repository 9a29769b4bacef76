package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gqlmerge/internal/diagfmt"
	"gqlmerge/internal/driver"
	"gqlmerge/internal/engine"
	"gqlmerge/internal/observ"
	"gqlmerge/internal/project"
	"gqlmerge/internal/source"
	"gqlmerge/internal/trace"
	"gqlmerge/internal/version"
	"gqlmerge/internal/watch"
)

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [flags]",
		Short: "Merge schema files and validate operations",
		Long: `Merge every file matched by the --schema globs into one schema and print it.
When the merge fails, each error is reported with the file that causes it,
or with the set of files that cause it together.

Without --schema the paths are read from gqlmerge.toml found in the current
directory or one of its parents.`,
		Args: cobra.NoArgs,
		RunE: runMerge,
	}
	f := cmd.Flags()
	f.StringArrayP("schema", "s", nil, "glob of schema files to merge (repeatable)")
	f.StringP("output", "o", "", "file the merged schema is written to")
	f.StringArrayP("operations", "p", nil, "glob of operation files validated against the merged schema (repeatable)")
	f.String("format", "pretty", "error output format (pretty|short|json|yaml|sarif|log)")
	f.String("path-mode", "auto", "how file paths are shown (auto|absolute|relative|basename)")
	f.Int("jobs", 0, "max parallel probes and file reads (0=auto)")
	f.Int("max-diagnostics", 0, "limit of reported errors in json output (0=all)")
	f.Bool("disk-cache", false, "persist failed merge outcomes across runs")
	f.Bool("check", false, "fail when --output differs from the merged schema instead of writing it")
	f.Bool("watch", false, "re-run when schema files change")
	f.Bool("ui", false, "show probe progress while attributing errors")
	f.Bool("no-print", false, "do not print the merged schema to stdout")
	return cmd
}

// mergeConfig is the resolved set of inputs for one merge run.
type mergeConfig struct {
	schema     []string
	operations []string
	output     string
	baseDir    string
	format     string
	pathMode   source.PathMode
	jobs       int
	maxDiags   int
	diskCache  bool
	check      bool
	watch      bool
	ui         bool
	noPrint    bool
	color      bool
	quiet      bool
	timings    bool
}

var validFormats = map[string]bool{"pretty": true, "short": true, "json": true, "yaml": true, "sarif": true, "log": true}

// resolveMergeConfig merges flag values over the manifest. ok is false when
// neither a schema flag nor a manifest is available.
func resolveMergeConfig(cmd *cobra.Command) (cfg mergeConfig, ok bool, err error) {
	f := cmd.Flags()
	if cfg.schema, err = f.GetStringArray("schema"); err != nil {
		return cfg, false, err
	}
	if cfg.operations, err = f.GetStringArray("operations"); err != nil {
		return cfg, false, err
	}
	if cfg.output, err = f.GetString("output"); err != nil {
		return cfg, false, err
	}
	if cfg.format, err = f.GetString("format"); err != nil {
		return cfg, false, err
	}
	cfg.format = strings.ToLower(strings.TrimSpace(cfg.format))
	if !validFormats[cfg.format] {
		return cfg, false, fmt.Errorf("unknown format %q (want pretty|short|json|yaml|sarif|log)", cfg.format)
	}
	pathModeStr, err := f.GetString("path-mode")
	if err != nil {
		return cfg, false, err
	}
	var pmOK bool
	if cfg.pathMode, pmOK = source.ParsePathMode(pathModeStr); !pmOK {
		return cfg, false, fmt.Errorf("unknown path mode %q", pathModeStr)
	}
	if cfg.jobs, err = f.GetInt("jobs"); err != nil {
		return cfg, false, err
	}
	if cfg.jobs < 0 {
		return cfg, false, fmt.Errorf("--jobs must not be negative")
	}
	if cfg.maxDiags, err = f.GetInt("max-diagnostics"); err != nil {
		return cfg, false, err
	}
	for name, dst := range map[string]*bool{
		"disk-cache": &cfg.diskCache,
		"check":      &cfg.check,
		"watch":      &cfg.watch,
		"ui":         &cfg.ui,
		"no-print":   &cfg.noPrint,
	} {
		if *dst, err = f.GetBool(name); err != nil {
			return cfg, false, err
		}
	}
	cfg.color = colorEnabled(cmd)
	cfg.quiet = quiet(cmd)
	if cfg.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return cfg, false, err
	}

	if len(cfg.schema) > 0 {
		return cfg, true, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return cfg, false, err
	}
	manifest, found, err := project.Load(wd)
	if err != nil {
		return cfg, false, err
	}
	if !found {
		return cfg, false, nil
	}
	// флаги важнее манифеста
	cfg.schema = manifest.SchemaPatterns()
	cfg.baseDir = manifest.Root
	if len(cfg.operations) == 0 {
		cfg.operations = manifest.OperationPatterns()
	}
	if cfg.output == "" {
		cfg.output = manifest.OutputPath()
	}
	if !f.Changed("jobs") {
		cfg.jobs = manifest.Config.Attribution.Jobs
	}
	if !f.Changed("disk-cache") {
		cfg.diskCache = manifest.Config.Attribution.DiskCache
	}
	return cfg, true, nil
}

func runMerge(cmd *cobra.Command, _ []string) error {
	cfg, ok, err := resolveMergeConfig(cmd)
	if err != nil {
		return err
	}
	if !ok {
		return cmd.Help()
	}
	if cfg.check && cfg.output == "" {
		return fmt.Errorf("--check requires --output")
	}

	eng, counter, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	var logger *zap.Logger
	if cfg.format == "log" || cfg.watch {
		if logger, err = newLogger(cmd); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}
	r := &mergeRunner{
		cfg:     cfg,
		engine:  eng,
		counter: counter,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		logger:  logger,
	}

	if !cfg.watch {
		return r.run(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return r.watch(ctx)
}

// buildEngine wraps the gqlparser engine with the outcome cache. Probes of
// one run share the memory layer; --disk-cache adds the persistent one.
func buildEngine(cfg mergeConfig) (*engine.Cached, *engine.Counting, error) {
	var disk *engine.DiskCache
	if cfg.diskCache {
		var err error
		if disk, err = engine.OpenDiskCache("gqlmerge"); err != nil {
			return nil, nil, fmt.Errorf("failed to open disk cache: %w", err)
		}
	}
	counter := engine.NewCounting(engine.NewGraphQL())
	return engine.NewCached(counter, "gqlparser@"+version.Current().Version, disk), counter, nil
}

type mergeRunner struct {
	cfg     mergeConfig
	engine  *engine.Cached
	counter *engine.Counting
	out     io.Writer
	errOut  io.Writer
	logger  *zap.Logger

	// lastFailure holds the one-line-per-error text of the last failed merge.
	lastFailure string
}

func (r *mergeRunner) status(format string, args ...any) {
	if r.cfg.quiet {
		return
	}
	fmt.Fprintf(r.errOut, format+"\n", args...)
}

// run performs one merge: load, merge with attribution, print or write the
// schema, then validate operations.
func (r *mergeRunner) run(ctx context.Context) error {
	var timer *observ.Timer
	if r.cfg.timings {
		timer = observ.NewTimer()
		calls := r.counter.Calls()
		defer func() {
			hits, misses := r.engine.Stats()
			merges := r.counter.Calls() - calls
			if r.cfg.format == "json" || r.cfg.format == "sarif" {
				// машинные форматы: тайминги одной строкой JSON
				if data, err := timer.JSON(); err == nil {
					fmt.Fprintf(r.errOut, "%s\n", data)
				}
				return
			}
			fmt.Fprint(r.errOut, timer.Summary())
			fmt.Fprintf(r.errOut, "engine merges: %d, cache hits: %d, misses: %d\n", merges, hits, misses)
		}()
	}
	opts := driver.MergeOptions{
		Engine:  r.engine,
		Jobs:    r.cfg.jobs,
		Timer:   timer,
		BaseDir: r.cfg.baseDir,
	}

	r.status("Loading schema from %s", strings.Join(r.cfg.schema, ", "))
	var (
		res *driver.Result
		err error
	)
	if r.cfg.ui {
		res, err = runMergeWithUI(ctx, r.cfg.schema, opts)
	} else {
		res, err = driver.MergeSchemas(ctx, r.cfg.schema, opts)
	}

	r.lastFailure = ""
	var merr *driver.MergeError
	if errors.As(err, &merr) {
		r.lastFailure = diagfmt.ErrorText(merr.Report, res.Set, r.cfg.pathMode)
		if perr := r.printReport(merr, res.Set); perr != nil {
			return perr
		}
		fmt.Fprintln(r.errOut, labelColor(r.cfg.color).Sprint("Could not merge Schema files!"))
		return errReported
	}
	if err != nil {
		return err
	}

	text := diagfmt.SchemaString(res.Schema)
	if !r.cfg.noPrint && !r.cfg.check {
		if _, err := io.WriteString(r.out, text); err != nil {
			return err
		}
	}
	if r.cfg.output != "" {
		if err := timer.Track("output", func() error { return r.writeOutput(text) }); err != nil {
			return err
		}
	}
	if len(r.cfg.operations) > 0 {
		if err := timer.Track("operations", func() error { return r.validateOperations(ctx, res) }); err != nil {
			return err
		}
	}
	return nil
}

func (r *mergeRunner) printReport(merr *driver.MergeError, set *source.FragmentSet) error {
	report := merr.Report
	switch r.cfg.format {
	case "short":
		diagfmt.Short(r.out, report, set, r.cfg.pathMode)
	case "json":
		return diagfmt.JSON(r.out, report, set, diagfmt.JSONOpts{PathMode: r.cfg.pathMode, Indent: true, Max: r.cfg.maxDiags})
	case "yaml":
		return diagfmt.YAML(r.out, report, set, r.cfg.pathMode)
	case "sarif":
		return diagfmt.Sarif(r.out, report, set, diagfmt.SarifRunMeta{
			ToolName:    "gqlmerge",
			ToolVersion: version.Current().Version,
			PathMode:    r.cfg.pathMode,
		})
	case "log":
		diagfmt.Log(r.logger, report, set, r.cfg.pathMode)
	default:
		diagfmt.Pretty(r.out, report, set, diagfmt.PrettyOpts{
			Color:    r.cfg.color,
			PathMode: r.cfg.pathMode,
			Context:  true,
			Summary:  true,
		})
	}
	return nil
}

func (r *mergeRunner) writeOutput(text string) error {
	path := r.cfg.output
	if r.cfg.check {
		// #nosec G304 -- path is provided by the user
		existing, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if diff := diagfmt.Diff(string(existing), text, r.cfg.color); diff != "" {
			fmt.Fprintf(r.errOut, "%s is out of date:\n%s", path, diff)
			return errReported
		}
		r.status("%s is up to date.", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("error while writing the merged schema into %s: %w", path, err)
	}
	r.status("Successfully written merged schema into a file.")
	return nil
}

func (r *mergeRunner) validateOperations(ctx context.Context, res *driver.Result) error {
	r.status("Validating queries for %s using loaded schema", strings.Join(r.cfg.operations, ", "))
	errs, err := driver.ValidateOperations(ctx, r.cfg.operations, res.Schema, r.cfg.jobs)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		diagfmt.OperationErrors(r.out, errs, r.cfg.color)
		fmt.Fprintln(r.errOut, labelColor(r.cfg.color).Sprint("Operation files are not valid!"))
		return errReported
	}
	r.status("All queries are valid")
	return nil
}

// watch runs once, then again after every debounced schema change until ctx
// is canceled. Failures of individual runs are logged, not returned.
func (r *mergeRunner) watch(ctx context.Context) error {
	r.runLogged(ctx)
	w, err := watch.New(r.cfg.schema, watch.DefaultDebounce, r.logger)
	if err != nil {
		return err
	}
	r.logger.Info("watching schema files", zap.Strings("patterns", r.cfg.schema))
	return w.Run(ctx, r.runLogged)
}

func (r *mergeRunner) runLogged(ctx context.Context) {
	trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "watch:run", "")
	switch err := r.run(ctx); {
	case err == nil:
		r.logger.Info("merge succeeded")
	case errors.Is(err, errReported):
		r.logger.Warn("merge failed", zap.String("errors", r.lastFailure))
	default:
		r.logger.Error("merge failed", zap.Error(err))
	}
}
