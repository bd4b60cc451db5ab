package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mendtool/mend/internal/config"
	"github.com/mendtool/mend/internal/logging"
	"github.com/mendtool/mend/internal/repair"
	"github.com/mendtool/mend/internal/workspace"
)

const (
	exitFixed     = 0
	exitExhausted = 1
	exitAborted   = 2
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitAborted)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(run(os.Args[2:]))
	default:
		usage()
		os.Exit(exitAborted)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  mend run [--file <target>] [--config <mend.yaml>] [--log-level <level>] [--log-json]")
}

func run(args []string) int {
	var filePath string
	var configPath string
	var logLevel string
	var logJSON bool

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--file":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--file requires a value")
				return exitAborted
			}
			filePath = args[i]
		case "--config":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a value")
				return exitAborted
			}
			configPath = args[i]
		case "--log-level":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--log-level requires a value")
				return exitAborted
			}
			logLevel = args[i]
		case "--log-json":
			logJSON = true
		default:
			fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
			return exitAborted
		}
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitAborted
		}
		cfg = loaded
	} else if _, err := os.Stat("mend.yaml"); err == nil {
		loaded, err := config.Load("mend.yaml")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitAborted
		}
		cfg = loaded
	}

	log, closer, err := logging.New(logging.Options{Level: logLevel, JSON: logJSON})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitAborted
	}
	if closer != nil {
		defer closer.Close()
	}

	if filePath == "" {
		found, err := workspace.FindEntryFile(cfg.Workspace.Path, cfg.Workspace.EntryFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitAborted
		}
		filePath = found
	}

	oracle, err := config.NewOracleClient(cfg.Agent)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitAborted
	}

	eng, err := repair.NewEngine(repair.Options{
		WorkspaceRoot: cfg.Workspace.Path,
		TargetFile:    filePath,
		MaxRetry:      cfg.Agent.MaxRetry,
		Timeout:       time.Duration(cfg.Workspace.TimeoutSeconds) * time.Second,
		Interpreter:   cfg.Workspace.Interpreter,
	}, oracle, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitAborted
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, runErr := eng.Run(ctx)
	switch {
	case runErr != nil:
		fmt.Fprintf(os.Stderr, "session aborted: %v\n", runErr)
		return exitAborted
	case outcome.Status == repair.FinalSuccess:
		if outcome.RetryCount == 0 {
			fmt.Printf("%s passed without changes\n", filePath)
		} else {
			fmt.Printf("fixed after %d retries: %s\n", outcome.RetryCount, outcome.PatchedFile)
		}
		return exitFixed
	default:
		fmt.Fprintf(os.Stderr, "unable to repair %s after %d retries\n", filePath, outcome.RetryCount)
		if outcome.FinalStderr != "" {
			fmt.Fprintf(os.Stderr, "last error output:\n%s\n", outcome.FinalStderr)
		}
		return exitExhausted
	}
}
