package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trtbridge/internal/common/fsutil"
	"trtbridge/internal/config"
	"trtbridge/internal/registry"
	"trtbridge/internal/takeoff"
)

// cliOptions carries resolved flag/config/env state into the subcommands.
type cliOptions struct {
	cfg      config.Config
	log      zerolog.Logger
	stop     []string
	endpoint string
	regPath  string
}

func buildRootCmd() *cobra.Command {
	opts := &cliOptions{}
	var (
		cfgPath    string
		logLevel   string
		takeoffURL string
		model      string
		stopCSV    string
	)

	root := &cobra.Command{
		Use:           "trtbridge",
		Short:         "Client bridge for remote LLM inference servers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (.yaml/.json/.toml); defaults to ~/.trtbridge.yaml when present")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&takeoffURL, "takeoff-url", "", "Base URL of the HTTP generation server")
	root.PersistentFlags().StringVar(&model, "model", "", "Model name on the endpoint")
	root.PersistentFlags().StringVar(&stopCSV, "stop", "", "Comma-separated stop sequences")
	root.PersistentFlags().StringVar(&opts.regPath, "registry", "", "Endpoint registry file")
	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "Named endpoint from the registry")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			if home, err := os.UserHomeDir(); err == nil {
				p := home + "/.trtbridge.yaml"
				if fsutil.PathExists(p) {
					cfgPath = p
				}
			}
		}
		if cfgPath != "" {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
		}
		opts.cfg = config.FromEnv(opts.cfg)

		// Flags override file and environment.
		if takeoffURL != "" {
			opts.cfg.TakeoffURL = takeoffURL
		}
		if model != "" {
			opts.cfg.Model = model
		}
		if logLevel != "" {
			opts.cfg.LogLevel = logLevel
		}
		opts.stop = splitCSV(stopCSV)
		if len(opts.stop) == 0 {
			opts.stop = opts.cfg.StopWords
		}

		// Registry endpoint fills whatever is still unset.
		if opts.endpoint != "" {
			if opts.regPath == "" {
				return fmt.Errorf("--endpoint requires --registry")
			}
			reg, err := registry.Load(opts.regPath)
			if err != nil {
				return err
			}
			e, ok := reg.Lookup(opts.endpoint)
			if !ok {
				return fmt.Errorf("unknown endpoint %q", opts.endpoint)
			}
			if opts.cfg.TakeoffURL == "" {
				opts.cfg.TakeoffURL = e.TakeoffURL
			}
			if opts.cfg.ServerURL == "" {
				opts.cfg.ServerURL = e.ServerURL
			}
			if opts.cfg.Model == "" {
				opts.cfg.Model = e.Model
			}
		}

		opts.log = newLogger(opts.cfg.LogLevel)
		opts.log.Debug().
			Str("server_url", opts.cfg.ServerURL).
			Str("takeoff_url", opts.cfg.TakeoffURL).
			Str("model", opts.cfg.Model).
			Msg("resolved endpoint")
		return nil
	}

	root.AddCommand(buildGenerateCmd(opts))
	root.AddCommand(buildStreamCmd(opts))
	root.AddCommand(buildEndpointsCmd(opts))
	return root
}

func buildGenerateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "generate [prompt]",
		Short:   "Run one blocking generation and print the result",
		Example: "  trtbridge generate \"Why is the sky blue?\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := newTakeoffClient(opts)
			out, err := cli.Generate(cmd.Context(), strings.Join(args, " "), opts.stop)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func buildStreamCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "stream [prompt]",
		Short:   "Stream a generation, printing tokens as they arrive",
		Example: "  trtbridge stream \"Write a haiku about the ocean.\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := newTakeoffClient(opts)
			w := cmd.OutOrStdout()
			err := cli.Stream(cmd.Context(), strings.Join(args, " "), func(tok string) error {
				_, werr := fmt.Fprint(w, tok)
				return werr
			})
			fmt.Fprintln(w)
			return err
		},
	}
}

func buildEndpointsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List endpoints from the registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.regPath == "" {
				return fmt.Errorf("endpoints requires --registry")
			}
			reg, err := registry.Load(opts.regPath)
			if err != nil {
				return err
			}
			for _, name := range reg.Names() {
				e, _ := reg.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tserver=%s\ttakeoff=%s\tmodel=%s\n",
					name, e.ServerURL, e.TakeoffURL, e.Model)
			}
			return nil
		},
	}
}

func newTakeoffClient(opts *cliOptions) *takeoff.Client {
	params := takeoff.DefaultParams()
	if opts.cfg.MaxTokens > 0 {
		params.GenerateMaxLength = opts.cfg.MaxTokens
	}
	if opts.cfg.Temperature > 0 {
		params.SamplingTemp = opts.cfg.Temperature
	}
	clientOpts := []takeoff.Option{
		takeoff.WithParams(params),
		takeoff.WithLogger(opts.log),
	}
	if opts.cfg.TakeoffURL != "" {
		clientOpts = append(clientOpts, takeoff.WithBaseURL(opts.cfg.TakeoffURL))
	}
	return takeoff.NewClient(clientOpts...)
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty items.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
