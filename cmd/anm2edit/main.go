// Package main is the entry point for the anm2edit shell.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/dshills/anm2edit/internal/config"
	"github.com/dshills/anm2edit/internal/logging"
	"github.com/dshills/anm2edit/internal/naming"
	"github.com/dshills/anm2edit/internal/shell"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath   string
	OverridePath string
	LogLevel     string
	ScriptPath   string
	File         string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	loader := config.NewLoader(config.WithLogger(logging.New(logging.DefaultConfig())))
	cfg, err := loader.Load(opts.ConfigPath, opts.OverridePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel()
	logCfg.Format = logging.Format(cfg.Log.Format)
	logger := logging.New(logCfg)

	catalog := naming.New(cfg.Naming.Language)
	if cfg.Naming.Catalog != "" {
		if err := catalog.LoadFile(expandHome(cfg.Naming.Catalog)); err != nil {
			logger.Warn("naming catalog: %v", err)
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile(),
		AutoComplete:    shell.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize readline: %v\n", err)
		return 1
	}
	defer rl.Close()

	sh := shell.New(
		shell.WithOutput(rl.Stdout()),
		shell.WithLogger(logger),
		shell.WithCatalog(catalog),
		shell.WithMaxUndo(cfg.History.MaxEntries),
		shell.WithWatch(cfg.Watch.Enabled, 0),
	)
	defer sh.Close()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM)
	go func() {
		<-signals
		rl.Close()
	}()

	if opts.File != "" {
		if err := sh.Execute(`open "` + opts.File + `"`); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.ScriptPath != "" {
		if err := runScript(sh, opts.ScriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := sh.Run(rl); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runScript executes a file of shell commands, one per line, stopping at
// the first error. Blank lines and lines starting with # are skipped.
func runScript(sh *shell.Shell, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := sh.Execute(line); err != nil {
			if errors.Is(err, shell.ErrQuit) {
				return nil
			}
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "anm2edit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.OverridePath, "override", "", "Path to a best-effort override configuration file")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.ScriptPath, "run", "", "Execute shell commands from a file and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "anm2edit - animation script editor shell\n\n")
		fmt.Fprintf(os.Stderr, "Usage: anm2edit [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  anm2edit                    Start with an empty document\n")
		fmt.Fprintf(os.Stderr, "  anm2edit face.anm2         Open a script\n")
		fmt.Fprintf(os.Stderr, "  anm2edit -run build.txt     Run commands and exit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("anm2edit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: at most one file may be given\n")
		os.Exit(1)
	}
	opts.File = flag.Arg(0)

	return opts
}
