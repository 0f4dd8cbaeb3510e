// Package main is the entry point for the blocklane inspection tool.
//
// blocklane loads the lines of a file (or a snapshot) into a sequence
// engine, optionally edits it, and reports the shape of the index.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/blocklane/internal/config"
	"github.com/dshills/blocklane/internal/engine"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath   string
	restorePath  string
	snapshotPath string
	printRange   string
	deleteRange  string
	logLevel     string
	check        bool
	showVersion  bool
	files        []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "blocklane %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	if err := execute(opts, stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("blocklane", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.restorePath, "restore", "", "Load items from a snapshot instead of text")
	fs.StringVar(&opts.snapshotPath, "snapshot", "", "Write a snapshot of the final items")
	fs.StringVar(&opts.printRange, "print", "", "Print lines START:END")
	fs.StringVar(&opts.deleteRange, "delete", "", "Delete lines START:END before reporting")
	fs.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	fs.BoolVar(&opts.check, "check", false, "Verify index invariants")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "blocklane - inspect a block-lane sequence index\n\n")
		fmt.Fprintf(stderr, "Usage: blocklane [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  blocklane main.go                      Report index shape for a file\n")
		fmt.Fprintf(stderr, "  blocklane -print 10:20 main.go         Print lines 10 to 19\n")
		fmt.Fprintf(stderr, "  blocklane -snapshot out.bl main.go     Save the lines as a snapshot\n")
		fmt.Fprintf(stderr, "  blocklane -restore out.bl -check       Load and verify a snapshot\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.files = fs.Args()
	if len(opts.files) > 1 {
		fmt.Fprintf(stderr, "Error: at most one input file\n")
		fs.Usage()
		return opts, errors.New("too many files")
	}
	return opts, nil
}

func execute(opts options, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	e, err := engine.New[string](cfg.EngineOptions(logger)...)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := load(e, opts, stdin, logger); err != nil {
		return err
	}

	if opts.deleteRange != "" {
		start, end, err := parseRange(opts.deleteRange, e.Len())
		if err != nil {
			return fmt.Errorf("-delete: %w", err)
		}
		if err := e.Delete(start, end); err != nil {
			return err
		}
	}

	if opts.printRange != "" {
		start, end, err := parseRange(opts.printRange, e.Len())
		if err != nil {
			return fmt.Errorf("-print: %w", err)
		}
		lines, err := e.Slice(start, end)
		if err != nil {
			return err
		}
		for i, line := range lines {
			fmt.Fprintf(stdout, "%6d  %s\n", start+i, line)
		}
	}

	if opts.check {
		if err := e.Check(); err != nil {
			return fmt.Errorf("index check: %w", err)
		}
		fmt.Fprintln(stdout, "check: ok")
	}

	if opts.snapshotPath != "" {
		if err := writeSnapshot(e, opts.snapshotPath); err != nil {
			return err
		}
	}

	printStats(stdout, e.Stats())
	return nil
}

func load(e *engine.Engine[string], opts options, stdin io.Reader, logger *zap.Logger) error {
	if opts.restorePath != "" {
		f, err := os.Open(opts.restorePath)
		if err != nil {
			return err
		}
		defer f.Close()
		return e.Restore(bufio.NewReader(f))
	}

	in := stdin
	if len(opts.files) == 1 {
		f, err := os.Open(opts.files[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	lines, err := readLines(in)
	if err != nil {
		return err
	}
	logger.Debug("lines read", zap.Int("count", len(lines)))
	return e.SetContent(lines)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}

func writeSnapshot(e *engine.Engine[string], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := e.Snapshot(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseRange parses "START:END" where either side may be empty.
func parseRange(s string, length int) (int, int, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("range %q is not START:END", s)
	}
	start, end := 0, length
	var err error
	if lo != "" {
		if start, err = strconv.Atoi(lo); err != nil {
			return 0, 0, fmt.Errorf("range start %q: %w", lo, err)
		}
	}
	if hi != "" {
		if end, err = strconv.Atoi(hi); err != nil {
			return 0, 0, fmt.Errorf("range end %q: %w", hi, err)
		}
	}
	return start, end, nil
}

func printStats(w io.Writer, s engine.Stats) {
	fmt.Fprintf(w, "items:    %d\n", s.Length)
	fmt.Fprintf(w, "blocks:   %d (k=%d, fill %.1f%%, sizes %d..%d)\n",
		s.Blocks, s.BlockCapacity, s.Fill*100, s.MinBlock, s.MaxBlock)
	fmt.Fprintf(w, "lanes:    %d %v\n", s.Height, s.LaneSizes)
	fmt.Fprintf(w, "nodes:    %d\n", s.Nodes)
}
