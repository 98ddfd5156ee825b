package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansel1/nyan/config"
	"github.com/ansel1/nyan/engine"
	"github.com/ansel1/nyan/reporter"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

func main() {
	// Parse command-line flags
	infile := flag.String("f", "", "Read events from file instead of stdin")
	outfile := flag.String("outfile", "", "Save all input to the specified file")
	jsonfile := flag.String("jsonfile", "", "Save lifecycle events to the specified file")
	configPath := flag.String("config", "", "Path to config file (default: nearest "+config.FileName+")")
	suppress := flag.Bool("suppress-errors", false, "Don't collect or print failure details")
	notty := flag.Bool("notty", false, "Don't animate, only print the final report")
	forceTTY := flag.Bool("tty", false, "Animate even when stdout is not a terminal")
	logfile := flag.String("logfile", "", "Write diagnostic logs to the specified file")
	replay := flag.Bool("replay", false, "Replay events with timing from original test run (requires -f)")
	rate := flag.Float64("rate", 1.0, "Replay rate multiplier (0=instant, 1=original speed, 0.5=2x speed)")
	flag.Parse()

	// Validate flag combinations
	if *replay && *infile == "" {
		fmt.Fprintf(os.Stderr, "Error: -replay requires -f <filename>\n")
		os.Exit(1)
	}
	if *rate < 0 {
		fmt.Fprintf(os.Stderr, "Error: -rate must be >= 0\n")
		os.Exit(1)
	}

	// Load config: explicit path, else nearest .nyan.yaml, else defaults
	cfg := config.Default()
	path := *configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.Find(wd)
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *suppress {
		cfg.SuppressErrorReport = true
	}
	cfg.Animate = shouldAnimate(cfg.Animate, animateFlags{
		notty:    *notty,
		forceTTY: *forceTTY,
		fromFile: *infile != "",
		replay:   *replay,
		terminal: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	})

	// Diagnostic log
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *logfile != "" {
		f, err := os.Create(*logfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	// Setup input source (file or stdin)
	var inputSource io.Reader = os.Stdin
	if *infile != "" {
		f, err := os.Open(*infile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		// Wrap with ReplayReader if replay mode is enabled
		if *replay {
			replayReader, err := engine.NewReplayReader(f, *rate)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating replay reader: %v\n", err)
				os.Exit(1)
			}
			inputSource = replayReader
		} else {
			inputSource = f
		}
	}

	// Setup engine options
	var opts []engine.Option

	// Raw output file
	if *outfile != "" {
		f, err := os.Create(*outfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		opts = append(opts, engine.WithRawOutput(f))
	}

	// JSON output file
	if *jsonfile != "" {
		f, err := os.Create(*jsonfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating JSON file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		opts = append(opts, engine.WithJSONOutput(f))
	}

	// Restore the cursor if interrupted mid-animation
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Fprint(os.Stdout, ansi.ShowCursor+"\n")
		os.Exit(130)
	}()

	eng := engine.NewEngine(opts...)
	rep := reporter.New(os.Stdout, cfg,
		reporter.WithWidth(terminalWidth),
		reporter.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	err := rep.ProcessEvents(eng.Stream(ctx, inputSource))
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing events: %v\n", err)
		os.Exit(1)
	}

	// Set exit code based on test failures
	if rep.HasFailures() {
		os.Exit(1)
	}
}

type animateFlags struct {
	notty    bool
	forceTTY bool
	fromFile bool
	replay   bool
	terminal bool
}

// shouldAnimate reports whether the animation runs. It doesn't if:
// 1. the config or -notty turns it off, OR
// 2. -f is used without -replay (reading from file without replay), OR
// 3. stdout is not a terminal and -tty isn't set
func shouldAnimate(configured bool, f animateFlags) bool {
	if !configured || f.notty {
		return false
	}
	if f.fromFile && !f.replay {
		return false
	}
	return f.terminal || f.forceTTY
}

// terminalWidth returns the width of stdout, or 0 if it isn't a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}
