package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnana997/barrelgen/pkg/engine"
	mcpserver "github.com/gnana997/barrelgen/pkg/mcp"
	"github.com/gnana997/barrelgen/pkg/mcplog"
	"github.com/gnana997/barrelgen/pkg/util"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "generate":
		os.Exit(runGenerate(args, false))
	case "check":
		os.Exit(runGenerate(args, true))
	case "watch":
		os.Exit(runWatch(args))
	case "serve":
		os.Exit(runServe(args))
	case "version":
		fmt.Printf("barrelgen %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// cliFlags are the flags shared by every command.
type cliFlags struct {
	root    string
	barrel  string
	report  string
	dryRun  bool
	verbose bool
}

func parseFlags(args []string) *cliFlags {
	flags := &cliFlags{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--root":
			if i+1 < len(args) {
				i++
				flags.root = args[i]
			}
		case "--barrel":
			if i+1 < len(args) {
				i++
				flags.barrel = args[i]
			}
		case "--report":
			if i+1 < len(args) {
				i++
				flags.report = args[i]
			}
		case "--dry-run":
			flags.dryRun = true
		case "--verbose":
			flags.verbose = true
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[i])
		}
	}
	return flags
}

func loggerConfig(flags *cliFlags) util.LoggerConfig {
	cfg := util.DefaultLoggerConfig()
	if flags.verbose {
		cfg.Level = util.LevelDebug
	}
	return cfg
}

// runGenerate executes one pipeline run. In check mode nothing is written
// and a non-zero exit signals that barrels or imports are stale.
func runGenerate(args []string, check bool) int {
	flags := parseFlags(args)
	logger := util.NewLogger(loggerConfig(flags))

	cfg, _, err := buildEngineConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if check {
		cfg.DryRun = true
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create engine: %v\n", err)
		return 1
	}
	defer eng.Close()

	report, err := eng.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		return 1
	}

	printSummary(report)

	if check && report.Changed() {
		fmt.Fprintln(os.Stderr, "check failed: barrels or imports are out of date")
		return 1
	}
	return 0
}

// runWatch runs one full pass, then re-runs on debounced file changes
// until interrupted.
func runWatch(args []string) int {
	flags := parseFlags(args)
	logger := util.NewLogger(loggerConfig(flags))

	cfg, _, err := buildEngineConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create engine: %v\n", err)
		return 1
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if report, err := eng.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "initial run failed: %v\n", err)
		return 1
	} else {
		printSummary(report)
	}

	watcher, err := engine.NewWatcher(eng, engine.DefaultWatchOptions(), printSummary, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create watcher: %v\n", err)
		return 1
	}
	if err := watcher.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start watcher: %v\n", err)
		return 1
	}
	defer watcher.Stop()

	<-ctx.Done()
	return 0
}

// runServe starts the MCP stdio server backed by an engine over the
// configured root.
func runServe(args []string) int {
	flags := parseFlags(args)
	logger := util.NewLogger(loggerConfig(flags))

	cfg, project, err := buildEngineConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create engine: %v\n", err)
		return 1
	}
	defer eng.Close()

	var callLog *mcplog.Logger
	if project != nil && project.MCPLogPath != "" {
		callLog, err = mcplog.NewLogger(project.MCPLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open MCP log: %v\n", err)
			return 1
		}
		defer callLog.Close()
	}

	srv := mcpserver.NewServer(eng, callLog)
	if err := srv.ServeStdio(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return 1
	}
	return 0
}

func printSummary(report *engine.Report) {
	fmt.Printf("analyzed %d files, %d exports; %d conflicts, %d barrels written, %d patched, %d rewritten\n",
		report.FilesAnalyzed,
		report.ExportsFound,
		report.ConflictsDetected,
		report.BarrelsGenerated,
		len(report.FilesPatched),
		len(report.FilesRewritten))
	if report.ValidationErrors > 0 {
		fmt.Printf("%d files or imports could not be processed; see the report for details\n",
			report.ValidationErrors)
	}
}

func printUsage() {
	fmt.Println("Usage: barrelgen <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate   Reconcile exports and generate barrels")
	fmt.Println("  check      Dry run; exit non-zero if anything is stale")
	fmt.Println("  watch      Re-run on file changes")
	fmt.Println("  serve      Start MCP server on stdio")
	fmt.Println("  version    Print version")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --root <dir>      Project root (default: . or config)")
	fmt.Println("  --barrel <name>   Barrel file name (default: index.ts)")
	fmt.Println("  --report <path>   Write the JSON run report here")
	fmt.Println("  --dry-run         Compute changes without writing")
	fmt.Println("  --verbose         Debug logging")
}
