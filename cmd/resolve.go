package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/moviebooking/docs-gateway/internal/swaggerconfig"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

func newResolveCmd() *cobra.Command {
	var (
		source  string
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Fetch a swagger-config once and print the resulting Swagger UI options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			return runResolve(cmd.Context(), cmd.OutOrStdout(), log, source, output, timeout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&source, "source", "", "swagger-config URL, e.g. http://localhost:8080/api-docs/swagger-config")
	f.StringVarP(&output, "output", "o", outputJSON, "output format: json or yaml")
	f.DurationVar(&timeout, "timeout", 5*time.Second, "fetch timeout")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

// runResolve prints the options and reports the path that produced them on
// the log. A failed fetch is not an error: the fallback options are printed.
func runResolve(ctx context.Context, out io.Writer, log *slog.Logger, source, output string, timeout time.Duration) error {
	if output != outputJSON && output != outputYAML {
		return fmt.Errorf("unknown output format %q (want %s or %s)", output, outputJSON, outputYAML)
	}

	loader := swaggerconfig.NewLoader(swaggerconfig.NewClient(source, timeout), log)
	opts, src := loader.Load(ctx)
	log.Info("Resolved Swagger UI options", slog.String("source", string(src)), slog.Int("urls", len(opts.URLs)))

	if output == outputYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(opts); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(opts)
}
