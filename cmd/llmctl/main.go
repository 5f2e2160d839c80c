package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/llmctl/config"
	"github.com/tailored-agentic-units/llmctl/coordinator"
	"github.com/tailored-agentic-units/llmctl/hostcap"
	"github.com/tailored-agentic-units/llmctl/loop"
	"github.com/tailored-agentic-units/llmctl/observability"
	"github.com/tailored-agentic-units/llmctl/ratelimit"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		runStart(os.Args[2:])
	case "stop":
		runStop(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: llmctl <start|stop|status> [flags]")
}

func runStart(args []string) {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	task := fs.String("task", "", "Task description for the run (required)")
	projectDir := fs.String("dir", ".", "Project directory the run operates in")
	maxCycles := fs.Int("max-cycles", 10, "Maximum number of cycles")
	noULMode := fs.Bool("no-ul-mode", false, "Disable UL mode (research/plan/implement); run fixed-perspective cycle mode instead")
	requireApproval := fs.Bool("require-approval", false, "Require manual approval instead of auto-approve")
	autoCommit := fs.Bool("auto-commit", true, "Commit new changes at the end of each cycle")
	provider := fs.String("provider", "anthropic", "Model provider name, passed through to call_model")
	modelID := fs.String("model", "claude-sonnet", "Model identifier")
	thinking := fs.String("thinking", string(hostcap.ThinkingMedium), "Thinking level: none|low|medium|high")
	apiBase := fs.String("api-base", "https://api.anthropic.com/v1", "Base URL for the chat-completions endpoint")
	apiKey := fs.String("api-key", os.Getenv("LLMCTL_API_KEY"), "API key for the model provider")
	verbose := fs.Bool("verbose", false, "Enable verbose logging to stderr")
	observerName := fs.String("observer", envOr("LLMCTL_OBSERVER", "slog"), "Observability backend for the run and the coordinator heartbeat: slog|zerolog|noop")
	fs.Parse(args)

	if *task == "" {
		fmt.Fprintln(os.Stderr, "Usage: llmctl start -task <text> [flags]")
		fs.PrintDefaults()
		os.Exit(1)
	}

	dir, err := filepath.Abs(*projectDir)
	if err != nil {
		log.Fatalf("resolve project dir: %v", err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// "slog" stays bound to this run's own leveled logger rather than the
	// registry's slog.Default() entry, so -verbose still controls it; any
	// other backend (notably "zerolog", the high-frequency choice for the
	// coordinator's heartbeat emitter) comes straight from the registry.
	var observer observability.Observer
	if *observerName == "slog" {
		observer = observability.NewSlogObserver(logger)
	} else {
		obs, err := observability.GetObserver(*observerName)
		if err != nil {
			log.Fatalf("resolve observer: %v", err)
		}
		observer = obs
	}

	overrides := config.LoadEnv()
	rateController := ratelimit.New(overrides.RateLimit, observer)

	client := hostcap.NewHTTPModelClient(*apiBase, *apiKey)

	runID := uuid.NewString()
	ulMode := !*noULMode
	autoApprove := !*requireApproval

	var host hostcap.Host
	if ulMode {
		host = hostcap.NewCLIHost(os.Stdin, os.Stdout, runID)
	} else {
		host = hostcap.NewFakeHost() // cycle mode never calls into Host
	}

	// coord tracks this process alongside any sibling llmctl instances on
	// the same machine, so the perspective-sweep pool's concurrency limit
	// reflects a fair share of total_max_llm rather than assuming it owns
	// the whole budget.
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("resolve home directory: %v", err)
	}
	coord := coordinator.New(coordinator.DefaultRuntimeRoot(homeDir), overrides.Coordinator, observer)
	if err := coord.Register(runID, dir); err != nil {
		log.Fatalf("register with coordinator: %v", err)
	}
	defer coord.Unregister()

	deps := loop.Deps{
		CallModel:      client.Call,
		VCS:            hostcap.NewGitVCS(dir),
		Host:           host,
		RateController: rateController,
		Coordinator:    coord,
		Observer:       observer,
		ProjectDir:     dir,
		Provider:       *provider,
		ModelID:        *modelID,
		ThinkingLevel:  hostcap.ThinkingLevel(*thinking),
		Config:         overrides.Loop,
	}

	rs := loop.NewRunState(runID, *task, overrides.Loop, ulMode, *autoCommit, autoApprove, *maxCycles)

	runLog, err := loop.NewRunLog(dir, runID)
	if err != nil {
		log.Fatalf("create run log: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Starting run %s (mode=%s, max_cycles=%d, observer=%s)\nLog: %s\n", runID, modeName(ulMode), *maxCycles, *observerName, runLog.Path())

	if err := loop.Run(ctx, rs, deps, runLog); err != nil {
		log.Fatalf("run failed: %v", err)
	}

	fmt.Printf("Run %s stopped: %s (cycle %d)\n", runID, rs.StopReason, rs.Cycle)
}

// envOr returns the named environment variable, or fallback if unset/empty.
func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func modeName(ulMode bool) string {
	if ulMode {
		return "ul"
	}
	return "cycle"
}

func runStop(args []string) {
	fs := flag.NewFlagSet("stop", flag.ExitOnError)
	projectDir := fs.String("dir", ".", "Project directory the run operates in")
	fs.Parse(args)

	dir, err := filepath.Abs(*projectDir)
	if err != nil {
		log.Fatalf("resolve project dir: %v", err)
	}

	path := filepath.Join(dir, ".pi", "self-improvement-loop", "stop-signal")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatalf("create stop-signal directory: %v", err)
	}
	if err := os.WriteFile(path, []byte("STOP"), 0o644); err != nil {
		log.Fatalf("write stop signal: %v", err)
	}
	fmt.Printf("Stop signal written to %s\n", path)
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	projectDir := fs.String("dir", ".", "Project directory the run operates in")
	fs.Parse(args)

	dir, err := filepath.Abs(*projectDir)
	if err != nil {
		log.Fatalf("resolve project dir: %v", err)
	}

	stateDir := filepath.Join(dir, ".pi", "self-improvement-loop")
	entries, err := os.ReadDir(stateDir)
	if err != nil {
		fmt.Println(`{"running": false}`)
		return
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestMod) {
			latestMod = info.ModTime()
			latest = e.Name()
		}
	}

	stopPath := filepath.Join(stateDir, "stop-signal")
	_, stopErr := os.Stat(stopPath)
	running := latest != "" && os.IsNotExist(stopErr)

	fmt.Printf("{\"running\": %v, \"latest_log\": %q}\n", running, filepath.Join(stateDir, latest))
}
