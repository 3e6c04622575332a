// Package main provides the CLI entry point for storyloop.
//
// storyloop drives a story-at-a-time work loop for a coding agent. A
// requirements document (prd.json) lists prioritized stories; storyloop
// repeatedly hands out the highest-priority incomplete story as a rendered
// work prompt and records completions, archiving finished units of work when
// the branch changes.
//
// Usage:
//
//	storyloop init [--project NAME] [--branch NAME]  - Scaffold files and rotate archives
//	storyloop check                                  - Print COMPLETE or CONTINUE
//	storyloop prompt                                 - Print the next work prompt
//	storyloop complete <id>                          - Mark a story complete
//	storyloop log "<entry>"                          - Append a progress log entry
//	storyloop status                                 - Show loop status
//	storyloop watch                                  - Watch the store and reprint status
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/storyloop/internal/config"
	"github.com/ternarybob/storyloop/internal/logger"
	"github.com/ternarybob/storyloop/internal/loop"
	"github.com/ternarybob/storyloop/internal/watcher"
)

// version is set via -ldflags at build time
var version = "dev"

// exitAllComplete is the distinguished "nothing left to do" status. It is
// never used for real failures, so driver scripts can exit their loop on it.
const exitAllComplete = 2

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "version", "-v", "--version":
		fmt.Printf("storyloop version %s\n", version)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	l, err := newLoop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "init":
		err = cmdInit(l, args)
	case "check":
		err = cmdCheck(l)
	case "prompt":
		err = cmdPrompt(l)
	case "complete":
		err = cmdComplete(l, args)
	case "log":
		err = cmdLog(l, args)
	case "status":
		err = cmdStatus(l)
	case "watch":
		err = cmdWatch(l)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, loop.ErrNoIncompleteStory) {
			fmt.Fprintln(os.Stderr, "all stories complete")
			os.Exit(exitAllComplete)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`storyloop - Story-at-a-time work loop for coding agents

Commands:
  init [--project NAME] [--branch NAME]  Scaffold prd.json and PROMPT.md, rotate archives
  check                                  Print COMPLETE or CONTINUE
  prompt                                 Print the rendered prompt for the next story
  complete <id>                          Mark a story complete
  log "<entry>"                          Append an entry to the progress log
  status                                 Show project, branch, and story counts
  watch                                  Watch the store file and reprint status on change
  version                                Show version
  help                                   Show this help

Exit codes:
  0  success
  1  error (malformed store, unknown id, missing template, I/O failure)
  2  all stories complete (normal loop exit, not an error)

The external driver loop is:
  storyloop init && storyloop check
  storyloop prompt        -> hand the prompt to the agent
  storyloop complete <id> -> after the agent's work passes your gates`)
}

func newLoop() (*loop.Loop, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger.SetupLogger(cfg)
	return loop.New(cfg), nil
}

// cmdInit scaffolds missing project files, runs archive rotation, and
// ensures the progress log exists. Idempotent; safe at the top of every
// driver iteration.
func cmdInit(l *loop.Loop, args []string) error {
	project := ""
	branch := ""
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--project" && i+1 < len(args):
			project = args[i+1]
			i++
		case args[i] == "--branch" && i+1 < len(args):
			branch = args[i+1]
			i++
		default:
			return fmt.Errorf("usage: storyloop init [--project NAME] [--branch NAME]")
		}
	}

	if err := l.Scaffold(project, branch); err != nil {
		return fmt.Errorf("scaffold project files: %w", err)
	}
	return l.Initialize()
}

// cmdCheck prints the loop state for driver scripts and stop hooks.
func cmdCheck(l *loop.Loop) error {
	done, err := l.IsDone()
	if err != nil {
		return err
	}
	if done {
		fmt.Println("COMPLETE")
	} else {
		fmt.Println("CONTINUE")
	}
	return nil
}

// cmdPrompt prints the rendered work prompt for the next story.
func cmdPrompt(l *loop.Loop) error {
	rendered, err := l.NextPrompt()
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

// cmdComplete marks a story complete by id.
func cmdComplete(l *loop.Loop, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: storyloop complete <id>")
	}
	if err := l.Complete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Story %s marked complete\n", args[0])
	return nil
}

// cmdLog appends an entry to the progress log.
func cmdLog(l *loop.Loop, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: storyloop log \"<entry>\"")
	}
	return l.LogProgress(args[0])
}

// cmdStatus shows the current loop status.
func cmdStatus(l *loop.Loop) error {
	status, err := l.Status()
	if err != nil {
		return err
	}

	fmt.Printf("Storyloop Status\n")
	fmt.Printf("================\n")
	fmt.Printf("Project: %s\n", status.Project)
	fmt.Printf("Branch: %s\n", status.Branch)
	fmt.Printf("Stories: %d/%d complete\n", status.Total-status.Remaining, status.Total)
	if status.Done {
		fmt.Printf("Done: all stories complete\n")
	} else {
		fmt.Printf("Next: %s\n", status.NextID)
	}
	return nil
}

// cmdWatch reprints status whenever the store file changes.
func cmdWatch(l *loop.Loop) error {
	if err := cmdStatus(l); err != nil {
		return err
	}

	w, err := watcher.New(l.Config().StorePath(), 250, func() {
		fmt.Println()
		if err := cmdStatus(l); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Println("\nWatching for changes (Ctrl-C to stop)...")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}
