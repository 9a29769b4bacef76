package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"gqlmerge/internal/logx"
	"gqlmerge/internal/version"
)

// errReported means the command already printed its failure.
var errReported = errors.New("failure reported")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gqlmerge",
		Short: "Merge GraphQL schema files and trace errors back to their source",
		Long: `gqlmerge merges a set of GraphQL SDL files into one schema. When the merge
fails, every reported error is attributed to the file that causes it.`,
		Version:       version.Current().Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "trace output file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
	pf.String("log-format", "console", "structured log encoding (console|json)")
	pf.String("log-level", "info", "structured log level (debug|info|warn|error)")

	root.AddCommand(newMergeCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// main runs the root command and exits with status 1 on any error.
// A panic dumps the trace ring buffer to stderr before re-panicking.
func main() {
	root := newRootCmd()
	code := run(root, os.Args[1:])
	os.Exit(code)
}

func run(root *cobra.Command, args []string) int {
	session := &traceSession{}
	defer func() {
		if r := recover(); r != nil {
			session.crashDump(os.Stderr)
			panic(r)
		}
	}()
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return session.setup(cmd)
	}
	root.SetArgs(args)
	err := root.Execute()
	session.cleanup(root.ErrOrStderr())
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(root.ErrOrStderr(), "%s %v\n", errorLabel(root).Sprint("error:"), err)
	}
	return 1
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves --color against the stdout tty state.
func colorEnabled(cmd *cobra.Command) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	switch strings.ToLower(mode) {
	case "on", "always":
		return true
	case "off", "never":
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		out, ok := cmd.OutOrStdout().(*os.File)
		return ok && isTerminal(out)
	}
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

func errorLabel(cmd *cobra.Command) *color.Color {
	return labelColor(colorEnabled(cmd))
}

func labelColor(enabled bool) *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// newLogger builds the zap logger from --log-format and --log-level.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	pf := cmd.Root().PersistentFlags()
	format, err := pf.GetString("log-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-format flag: %w", err)
	}
	level, err := pf.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	return logx.FromFlags(cmd.ErrOrStderr(), format, level)
}
