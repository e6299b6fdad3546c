package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/relgen/compiler/gen"
)

var (
	configPath string
	logLevel   string
	target     string
	store      string
	features   []string
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var rootCmd = &cobra.Command{
	Use:           "relgen",
	Short:         "Relationship directive compiler",
	Long:          "relgen compiles @hasOne, @hasMany, @belongsTo and @manyToMany relations into tables, indexes and resolvers.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&store, "store", "", "default backing store: dynamodb, mysql or postgres")
	rootCmd.PersistentFlags().StringSliceVar(&features, "feature", nil, "enable a feature flag (repeatable)")

	generateCmd.Flags().StringVarP(&target, "target", "o", "", "output directory")
	generateCmd.Flags().StringVar(&gqlgenPath, "gqlgen", "", "gqlgen.yml to register the schema and relation resolvers in")
	generateCmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate when schema files change")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(featuresCmd)
}

// newLogger returns a text logger on stderr at the --log-level level.
func newLogger() *slog.Logger {
	level, ok := logLevels[strings.ToLower(logLevel)]
	if !ok {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// setup resolves the schema patterns and compiler options of a command from
// the config file, flags and arguments. Flags override the file.
func setup(args []string) ([]string, []gen.Option, *slog.Logger, error) {
	path, explicit := configPath, configPath != ""
	if !explicit {
		path = DefaultConfigFile
	}
	cfg, err := readConfig(path, explicit)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger()
	opts := cfg.options(logger)
	if store != "" {
		opts = append(opts, gen.WithStore(store))
	}
	if len(features) > 0 {
		opts = append(opts, gen.WithFeatureNames(features...))
	}
	if target != "" {
		opts = append(opts, gen.WithTarget(target))
	}
	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.Schema
	}
	if len(patterns) == 0 {
		return nil, nil, nil, fmt.Errorf("no schema given; pass files or set schema in %s", path)
	}
	return patterns, opts, logger, nil
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List compiler feature flags",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, f := range gen.AllFeatures {
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-8s default=%-5t %s\n", f.Name, f.Stage, f.Default, f.Description)
		}
	},
}
