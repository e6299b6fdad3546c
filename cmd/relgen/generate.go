package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/relgen/compiler"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/load"
	"github.com/syssam/relgen/contrib/gqlgen"
)

var (
	watch      bool
	gqlgenPath string
)

// debounce groups editor write bursts into one regeneration.
const debounce = 200 * time.Millisecond

var generateCmd = &cobra.Command{
	Use:   "generate [schema files or dirs...]",
	Short: "Compile the schema and write the artifacts",
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	patterns, opts, logger, err := setup(args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := generateOnce(ctx, cmd, logger, patterns, opts); err != nil || !watch {
		return err
	}
	return watchSchema(ctx, logger, patterns, func() {
		if err := generate(ctx, cmd, patterns, opts); err != nil {
			logger.Error("generation failed", "error", err)
		}
	})
}

// generateOnce runs the first generation. In watch mode a failure is logged
// and watching goes on.
func generateOnce(ctx context.Context, cmd *cobra.Command, logger *slog.Logger, patterns []string, opts []gen.Option) error {
	err := generate(ctx, cmd, patterns, opts)
	if err != nil && watch {
		logger.Error("generation failed", "error", err)
		return nil
	}
	return err
}

func generate(ctx context.Context, cmd *cobra.Command, patterns []string, opts []gen.Option) error {
	out, err := compiler.GenerateFiles(ctx, patterns, opts...)
	if err != nil {
		return err
	}
	if gqlgenPath != "" {
		if err := gqlgen.Update(gqlgenPath, out); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d resolvers into %s\n", len(out.Resolvers), out.Config.Target)
	return nil
}

// watchSchema calls fn after schema files matched by patterns change, until
// ctx is done.
func watchSchema(ctx context.Context, logger *slog.Logger, patterns []string, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	files, err := load.Files(patterns...)
	if err != nil {
		return err
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	logger.Info("watching schema", "dirs", len(dirs))

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !load.IsSchemaFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			logger.Debug("schema changed", "file", ev.Name, "op", ev.Op.String())
			timer = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timer:
			timer = nil
			fn()
		}
	}
}
