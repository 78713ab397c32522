package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/planweave/internal/config"
	"github.com/Iron-Ham/planweave/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Rebuild and re-summarize a plan whenever its approach file changes",
	Long: `Watch monitors an approach file and rebuilds the plan each time the
file changes, printing the fresh summary. Editor save patterns that
replace the file (rename-and-replace, truncate-and-write) are handled.

Press Ctrl+C to stop.

Examples:
  planweave watch approach.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := newLogger(cfg)
	defer log.Close()
	wlog := log.WithComponent("watch")
	eng := newEngine(cfg, log)

	rebuild := func(path string) {
		plan, result, err := eng.BuildPlan(mustRead(path))
		if out := renderValidation(result, cfg.Output.Color); out != "" {
			fmt.Fprint(cmd.ErrOrStderr(), out)
		}
		if err != nil {
			wlog.Warn("rebuild failed", "path", path, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "plan validation failed: %v\n", err)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), renderSummary(eng, plan, cfg.Output.Color))
		fmt.Fprintln(cmd.OutOrStdout())
	}

	// Initial build so the user sees the current state immediately.
	rebuild(args[0])

	w, err := watch.New(args[0], rebuild)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	w.SetErrorCallback(func(err error) {
		wlog.Error("watcher error", "error", err)
	})
	w.Start()
	defer w.Stop()

	wlog.Info("watching", "path", args[0])
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", args[0])

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

// mustRead returns the file contents or an empty string, letting the empty
// plan check surface the problem as a validation finding.
func mustRead(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
