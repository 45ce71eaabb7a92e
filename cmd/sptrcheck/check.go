// check.go implements the 'sptrcheck check' command.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/boboxa2010/SmartPointers/cmd/sptrcheck/checker"
	"github.com/boboxa2010/SmartPointers/cmd/sptrcheck/modinfo"
)

// sptrModule is the module that provides the checked package.
const sptrModule = "github.com/boboxa2010/SmartPointers"

// checkOptions holds the parsed flags of 'sptrcheck check'.
type checkOptions struct {
	verbose    bool
	configPath string
	tests      bool
	jobs       int
	dir        string
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Check Go sources under dir (default \".\")",
		Long: `Check every Go source file under dir, skipping vendor/, testdata/,
directories starting with "." or "_", nested modules and, unless --tests is
given, _test.go files. "dir/..." is accepted and means the same as dir.`,
		Example: `  sptrcheck check
  sptrcheck check -v --tests ./...
  sptrcheck check --config ci/sptrcheck.yaml ./internal`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dir = "."
			if len(args) == 1 {
				opts.dir = args[0]
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print module information and statistics")
	f.StringVar(&opts.configPath, "config", "", "configuration file (default <module root>/"+configFileName+")")
	f.BoolVar(&opts.tests, "tests", false, "also check _test.go files")
	f.IntVarP(&opts.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of files checked in parallel")
	return cmd
}

// runCheck checks opts.dir, writing diagnostics to stdout and progress to
// stderr. It returns errDiagnostics if anything was reported.
func runCheck(ctx context.Context, stdout, stderr io.Writer, opts *checkOptions) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	dir := filepath.Clean(strings.TrimSuffix(filepath.ToSlash(opts.dir), "/..."))
	if fi, err := os.Stat(dir); err != nil {
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	configPath, configRequired := opts.configPath, opts.configPath != ""
	mod, err := modinfo.FindAndLoad(dir)
	switch {
	case errors.Is(err, modinfo.ErrNoModule):
		logger.Debug("no go.mod found, checking all files", "dir", dir)
		if !configRequired {
			configPath = filepath.Join(dir, configFileName)
		}
	case err != nil:
		return err
	default:
		logger.Debug("module", "path", mod.Path, "dir", mod.Dir, "go", mod.GoVersion)
		if !mod.DependsOn(sptrModule) {
			fmt.Fprintf(stderr, "module %s does not require %s, nothing to check\n", mod.Path, sptrModule)
			return nil
		}
		if !configRequired {
			configPath = filepath.Join(mod.Dir, configFileName)
		}
	}

	cfg, err := loadConfig(configPath, configRequired)
	if err != nil {
		return err
	}
	files, err := collectFiles(dir, cfg, opts.tests)
	if err != nil {
		return err
	}

	results, stats, err := checkFiles(ctx, files, cfg.enabledChecks(), opts.jobs)
	if err != nil {
		return err
	}

	var parseErrors int
	for _, r := range results {
		if r.err != nil {
			logger.Warn("skipping file", "error", r.err)
			parseErrors++
			continue
		}
		for _, d := range r.diags {
			fmt.Fprintln(stdout, d.Error())
		}
	}

	if opts.verbose {
		fmt.Fprintf(stderr, "Checked %s:\n", dir)
		fmt.Fprintf(stderr, "  - %d files parsed (%d import sptr, %d skipped)\n",
			stats.FilesParsed, stats.FilesChecked, stats.FilesSkipped)
		fmt.Fprintf(stderr, "  - %d adoptions inspected\n", stats.AdoptionsChecked)
		fmt.Fprintf(stderr, "  Total: %d diagnostic(s)\n", stats.Diagnostics)
	}

	switch {
	case stats.Diagnostics > 0:
		return errDiagnostics
	case parseErrors > 0:
		return fmt.Errorf("%d file(s) could not be parsed", parseErrors)
	}
	return nil
}

// fileResult is the outcome of checking one file.
type fileResult struct {
	diags []*checker.Diagnostic
	err   error
}

// checkFiles checks files on up to jobs goroutines. Results are returned
// in the order of files; a file that fails to parse only fails its own
// result.
func checkFiles(ctx context.Context, files []string, checks []checker.Check, jobs int) ([]fileResult, checker.Stats, error) {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]fileResult, len(files))
	stats := make([]checker.Stats, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			c := checker.New(checks...)
			diags, err := c.CheckFile(file, nil)
			results[i] = fileResult{diags: diags, err: err}
			stats[i] = c.Stats()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, checker.Stats{}, err
	}

	var total checker.Stats
	for _, s := range stats {
		total.Add(s)
	}
	return results, total, nil
}

// collectFiles returns the Go files under root to check, in lexical order.
func collectFiles(root string, cfg *fileConfig, tests bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
				// Nested module
				return filepath.SkipDir
			}
			if cfg.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		if !tests && strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if cfg.excluded(rel, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}
