// Package main provides the pipeflow CLI: run a YAML-declared flow
// topology, or generate a JSON Schema from sample records.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.pipeflow.dev/pipeflow/diagnostics"
	"go.pipeflow.dev/pipeflow/log"
	"go.pipeflow.dev/pipeflow/profile"
	"go.pipeflow.dev/pipeflow/schema"
	"go.pipeflow.dev/pipeflow/topology"
	"go.pipeflow.dev/pipeflow/version"
)

// tailBufferSize bounds how many of the most recent log entries newLogTail
// keeps, so a failed run can recap recent output without re-running with a
// more verbose log level.
const tailBufferSize = 20

func main() {
	logCfg := log.NewConfig()
	profCfg := profile.NewConfig()

	rootCmd := &cobra.Command{
		Use:           "pipeflow",
		Short:         "Run multi-source flow topologies and generate record schemas",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	profCfg.RegisterFlags(rootCmd.PersistentFlags())

	if err := logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	if err := profCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	var prof *profile.Profiler

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		prof = profCfg.NewProfiler()
		return prof.Start()
	}

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return prof.Stop()
	}

	rootCmd.AddCommand(newRunCmd(logCfg))
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRunCmd(logCfg *log.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <topology.yaml>",
		Short: "Run a flow topology until every source completes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub := log.NewPublisher()
			defer pub.Close()

			tail := newLogTail(pub.Subscribe(), tailBufferSize)

			handler, err := logCfg.NewHandler(io.MultiWriter(os.Stderr, pub))
			if err != nil {
				return err
			}

			logger := slog.New(handler)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open topology: %w", err)
			}
			defer f.Close()

			cfg, err := topology.Parse(f)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			diag := diagnostics.NewRecorder()
			defer diag.Close()

			go logDiagnostics(logger, diag)

			run, err := cfg.Build(diag)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			g, gctx := errgroup.WithContext(ctx)
			for _, feed := range run.Feeds {
				feed := feed
				g.Go(func() error { return feed.Run(gctx) })
			}

			feedDone := make(chan error, 1)

			go func() {
				feedDone <- g.Wait()
				run.Flow.Close()
			}()

			consumer := run.Flow.Consumer()
			enc := json.NewEncoder(os.Stdout)

			var n int

			for {
				item, ok, err := consumer.Next(context.Background())
				if !ok {
					if err != nil {
						logger.Error("upstream fault", slog.Any("error", err))
					}

					break
				}

				if err := enc.Encode(item); err != nil {
					return fmt.Errorf("write output: %w", err)
				}

				n++
			}

			feedErr := <-feedDone

			logger.Info("topology finished", slog.Int("items", n))

			if feedErr != nil {
				tail.dump(os.Stderr)
			}

			return feedErr
		},
	}
}

func logDiagnostics(logger *slog.Logger, rec *diagnostics.Recorder) {
	sub := rec.Subscribe()
	defer sub.Close()

	for ev := range sub.C() {
		attrs := []any{slog.String("component", ev.Component), slog.String("kind", string(ev.Kind))}
		if ev.Err != nil {
			attrs = append(attrs, slog.Any("error", ev.Err))
		}

		logger.Warn(ev.Message, attrs...)
	}
}

// logTail keeps the most recent max log entries seen on a [log.Subscription],
// so a failed run can recap recent output without re-running at a more
// verbose log level.
type logTail struct {
	mu    sync.Mutex
	lines [][]byte
	max   int
}

func newLogTail(sub *log.Subscription, max int) *logTail {
	t := &logTail{max: max}

	go func() {
		for entry := range sub.C() {
			t.mu.Lock()

			t.lines = append(t.lines, entry)
			if len(t.lines) > t.max {
				t.lines = t.lines[len(t.lines)-t.max:]
			}

			t.mu.Unlock()
		}
	}()

	return t
}

// dump writes the captured tail to w, most recent last. A no-op if nothing
// was captured.
func (t *logTail) dump(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.lines) == 0 {
		return
	}

	fmt.Fprintln(w, "--- recent log entries ---")

	for _, line := range t.lines {
		w.Write(line)
	}
}

func newSchemaCmd() *cobra.Command {
	schemaCfg := schema.NewConfig()

	cmd := &cobra.Command{
		Use:   "schema [flags] <file.yaml> [file2.yaml ...]",
		Short: "Generate a JSON Schema from sample record documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			gen := schemaCfg.NewGenerator()

			var inputs [][]byte

			for _, arg := range args {
				var (
					data []byte
					err  error
				)

				if arg == "-" {
					data, err = io.ReadAll(os.Stdin)
				} else {
					data, err = os.ReadFile(arg)
				}

				if err != nil {
					return fmt.Errorf("read %q: %w", arg, err)
				}

				inputs = append(inputs, data)
			}

			s, err := gen.Generate(inputs...)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}

			fmt.Println(string(out))

			return nil
		},
	}

	schemaCfg.RegisterFlags(cmd.Flags())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Printf("pipeflow %s (%s, %s/%s)\n", version.Version, version.Revision, version.GoOS, version.GoArch)

			return nil
		},
	}
}
