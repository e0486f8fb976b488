package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/olehluchkiv/modsplit/internal/analyzer"
	"github.com/olehluchkiv/modsplit/internal/logging"
	"github.com/olehluchkiv/modsplit/internal/module"
	"github.com/olehluchkiv/modsplit/internal/platform"
	"github.com/olehluchkiv/modsplit/internal/rootset"
	"github.com/olehluchkiv/modsplit/internal/session"
)

const (
	exitOK       = 0
	exitError    = 1
	exitAnalysis = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Go's flag package stops at the first non-flag argument, which breaks
	// "modsplit ./classes -add-modules m1". Reorder so flags come first.
	flags, positional := reorderArgs(args)

	fs := flag.NewFlagSet("modsplit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addModules := fs.String("add-modules", "", "root modules: comma-separated names, ALL-SYSTEM or ALL-DEFAULT (default: derived from the classes)")
	platformFile := fs.String("platform", "", "YAML file describing the system modules (default: $"+platform.EnvPath+" or the embedded platform)")
	filter := fs.String("filter", "", "only report dependencies from or to this package prefix")
	filterSamePackage := fs.Bool("filter-same-package", false, "drop dependencies within the same package")
	filterSameModule := fs.Bool("filter-same-module", false, "drop dependencies within the same module")
	includeSystem := fs.Bool("include-system", false, "report dependencies on system modules")
	strict := fs.Bool("strict", false, "fail when a referenced class is not found in the resolved modules")
	verbose := fs.Bool("verbose", false, "include class-level dependencies in the report")
	output := fs.String("output", "", "write the report to file instead of stdout")
	concurrency := fs.Int("concurrency", 0, "directories scanned in parallel (default: GOMAXPROCS)")
	logFile := fs.String("log-file", "", "log file path (logs always go to stderr)")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")

	if err := fs.Parse(flags); err != nil {
		return exitError
	}
	positional = append(positional, fs.Args()...)

	if len(positional) == 0 {
		fmt.Fprintln(stderr, "Usage: modsplit [flags] <class-dir>...")
		fs.PrintDefaults()
		return exitError
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid log level %q: %v\n", *logLevel, err)
		return exitError
	}

	logger, logCleanup, err := logging.Setup(*logFile, level)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to setup logging: %v\n", err)
		return exitError
	}
	defer logCleanup()

	// Setup signal handling with context cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	expr, err := rootset.Parse(*addModules)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid -add-modules: %v\n", err)
		return exitError
	}

	system, err := platform.Load(*platformFile)
	if err != nil {
		logger.Error("failed to load platform", "error", err)
		fmt.Fprintf(stderr, "Error loading platform: %v\n", err)
		return exitError
	}

	// Step 1: Scan class directories and build the catalog
	sess, err := session.Open(ctx, session.Config{
		Paths:       positional,
		Platform:    system,
		Concurrency: *concurrency,
	}, logger)
	if err != nil {
		logger.Error("failed to open session", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer sess.Close()

	// Step 2: Resolve modules and detect split packages
	res, err := sess.Resolve(expr)
	if err != nil {
		logger.Error("resolution failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	// Step 3: Analyze dependencies
	opts := analyzer.Options{
		Strict:             *strict,
		Pattern:            *filter,
		ExcludeSamePackage: *filterSamePackage,
		ExcludeSameModule:  *filterSameModule,
		IncludeSystem:      *includeSystem,
	}
	result, err := res.Analyze(ctx, opts)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		fmt.Fprintf(stderr, "Error analyzing classes: %v\n", err)
		return exitError
	}

	// Step 4: Write report
	rep := buildReport(res, result, sess, *verbose)
	if err := writeReport(rep, *output, stdout); err != nil {
		logger.Error("failed to write report", "error", err)
		fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return exitError
	}

	if !result.Success() {
		return exitAnalysis
	}
	return exitOK
}

type report struct {
	Roots         string                 `yaml:"roots"`
	Modules       []module.ID            `yaml:"modules"`
	SplitPackages map[string][]module.ID `yaml:"split_packages"`
	Malformed     []string               `yaml:"malformed,omitempty"`
	Analysis      analysisReport         `yaml:"analysis"`
}

type analysisReport struct {
	Success    bool         `yaml:"success"`
	Classes    int          `yaml:"classes"`
	Edges      []edgeReport `yaml:"edges,omitempty"`
	Unresolved []edgeReport `yaml:"unresolved,omitempty"`
}

type edgeReport struct {
	From   string    `yaml:"from"`
	To     string    `yaml:"to"`
	Module module.ID `yaml:"module,omitempty"`
}

func buildReport(res *session.Resolution, result *analyzer.Result, sess *session.Session, verbose bool) report {
	rep := report{
		Roots:         res.Expression.String(),
		Modules:       res.Modules(),
		SplitPackages: res.SplitPackages(),
		Analysis: analysisReport{
			Success: result.Success(),
			Classes: result.Classes,
		},
	}
	for _, m := range sess.Malformed() {
		rep.Malformed = append(rep.Malformed, m.Error())
	}
	if verbose {
		for _, e := range result.Edges {
			rep.Analysis.Edges = append(rep.Analysis.Edges, edgeReport{From: e.From, To: e.To, Module: e.ToModule})
		}
	}
	for _, e := range result.Unresolved {
		rep.Analysis.Unresolved = append(rep.Analysis.Unresolved, edgeReport{From: e.From, To: e.To})
	}
	return rep
}

func writeReport(rep report, output string, stdout io.Writer) error {
	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return enc.Close()
}

// reorderArgs separates flags and positional arguments so flags can appear
// in any position (before or after the class directories).
// Flags that take a value (e.g., -output report.yaml) consume the next arg.
func reorderArgs(args []string) (flags, positional []string) {
	// Set of flags that take a value argument
	valueFlagSet := map[string]bool{
		"-add-modules": true, "-platform": true, "-filter": true,
		"-output": true, "-concurrency": true, "-log-file": true, "-log-level": true,
		"--add-modules": true, "--platform": true, "--filter": true,
		"--output": true, "--concurrency": true, "--log-file": true, "--log-level": true,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			// Check if this flag takes a value (and it's not using = syntax)
			if !strings.Contains(arg, "=") && valueFlagSet[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}
	return flags, positional
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s (valid: debug, info, warn, error)", s)
	}
}
