package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BearBump/TrainBox/config"
	"github.com/BearBump/TrainBox/internal/integrations/railway"
	"github.com/BearBump/TrainBox/internal/integrations/railway/fake"
	"github.com/BearBump/TrainBox/internal/integrations/railway/viaggiatreno"
	"github.com/spf13/cobra"
)

type rootOpts struct {
	configPath string
	upstream   string

	newClient func(cfg *config.Config) railway.Client
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(upstreamClient)
}

func newRootCmdWith(newClient func(cfg *config.Config) railway.Client) *cobra.Command {
	opts := &rootOpts{newClient: newClient}

	root := &cobra.Command{
		Use:   "traincli",
		Short: "Look up live train status from the command line",
		Long: `traincli resolves a public train number to one operated run and prints
its live status as JSON, the same body the HTTP API returns.

Examples:
  # Current run of train 9544
  traincli lookup 9544

  # A specific departure when the number runs from several origins
  traincli lookup 555 --origin S01700 --at 2025-03-29T14:00:00+01:00

  # Offline demo data
  traincli --upstream fake lookup 2611

  # Which kind of train is "FR 9544"?
  traincli classify "FR 9544"`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("configPath"), "Path to the YAML config (optional)")
	root.PersistentFlags().StringVar(&opts.upstream, "upstream", "", "Override upstream mode: viaggiatreno or fake")

	root.AddCommand(newLookupCmd(opts), newClassifyCmd(), newEventsCmd(opts))
	return root
}

// loadConfig reads the optional config file and applies flag overrides.
func (o *rootOpts) loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.upstream != "" {
		if o.upstream != "viaggiatreno" && o.upstream != "fake" {
			return nil, fmt.Errorf("unknown upstream %q", o.upstream)
		}
		cfg.Upstream.Mode = o.upstream
	}
	if cfg.TrainBox.Timezone != "" {
		loc, err := time.LoadLocation(cfg.TrainBox.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.TrainBox.Timezone, err)
		}
		time.Local = loc
	}
	return cfg, nil
}

// The CLI issues a handful of calls per run and never rate limits.
func upstreamClient(cfg *config.Config) railway.Client {
	var c railway.Client
	if cfg.Upstream.Mode == "fake" {
		c = fake.New()
	} else {
		c = viaggiatreno.New(cfg.Upstream.BaseURL, time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second)
	}
	return railway.WithRetry(c, cfg.Upstream.RetryAttempts, 300*time.Millisecond)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
