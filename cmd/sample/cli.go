package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bjaus/dispatch"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sample",
		Short:         "Sample users API served by the dispatch core",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSpecCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			watch, err := cmd.Flags().GetBool("watch")
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, watch)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "Listen address (default :8080)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.Bool("swagger", true, "Serve the generated documentation at /swagger")
	flags.Bool("pprof", false, "Register hidden profiling routes under /debug/pprof")
	flags.Bool("watch", false, "Reload the log level when the config file changes")
	return cmd
}

func newSpecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Print the generated API document and exit",
		Example: strings.TrimSpace(`  sample spec
  sample spec --format yaml -o swagger.yaml
  sample spec --format openapi3`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			return runSpec(cfg, format, out, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("format", "json", "Output format (json|yaml|openapi3)")
	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	return cmd
}

func resolveConfig(cmd *cobra.Command) (Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return Config{}, err
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return cfg, err
	}
	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg Config, watch bool) error {
	lvl, err := cfg.level()
	if err != nil {
		return err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if watch && cfg.path != "" {
		err := watchConfig(ctx, cfg.path, logger, func(next Config) {
			if l, err := next.level(); err == nil {
				level.Set(l)
			}
		})
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
	}

	srv, err := newServer(cfg, logger, newUserStore())
	if err != nil {
		return err
	}

	logger.Info("starting server", "addr", cfg.Addr, "swagger", cfg.Swagger)
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func runSpec(cfg Config, format, out string, stdout io.Writer) error {
	srv, err := newServer(cfg, slog.New(slog.DiscardHandler), newUserStore())
	if err != nil {
		return err
	}
	var doc *dispatch.Document
	if sw := srv.Swagger(); sw != nil && sw.Enabled() {
		doc = sw.Document()
	} else {
		doc = dispatch.BuildDocument(srv.Registry(), cfg.Info)
	}

	w := stdout
	if out != "" {
		f, err := os.Create(out) //nolint:gosec // user-provided CLI flag
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("failed to close output file", "err", err)
			}
		}()
		w = f
	}

	switch format {
	case "json":
		return doc.WriteJSON(w)
	case "yaml":
		return doc.WriteYAML(w)
	case "openapi3":
		v3, err := doc.OpenAPI3()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v3)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
