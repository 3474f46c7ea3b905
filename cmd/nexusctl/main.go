// Command nexusctl runs routing operations against an in-process engine and
// sends requests to a running nexus worker.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aescanero/nexus-router/internal/codes"
	"github.com/aescanero/nexus-router/internal/config"
	"github.com/aescanero/nexus-router/internal/logging"
	"github.com/aescanero/nexus-router/internal/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version is set at build time
	Version = "dev"
)

// app carries what every subcommand needs; it is filled in by the root
// command's PersistentPreRunE
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *codes.Registry
	renderer *renderer

	registryFile string
	logLevel     string
	output       string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "nexusctl",
		Short:         "Route error codes to their houses",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, out)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.registryFile, "registry", "", "YAML file with extra codes (default $REGISTRY_FILE)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL)")
	flags.StringVarP(&a.output, "output", "o", outputText, "output format: text or json")

	cmd.AddCommand(
		newCodesCmd(a),
		newRouteCmd(a),
		newDiagnoseCmd(a),
		newSynthesizeCmd(a),
		newDemoCmd(a),
		newSendCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("registry") {
		cfg.RegistryFile = a.registryFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	// the CLI stays quiet unless asked
	level := cfg.LogLevel
	if !cmd.Flags().Changed("log-level") && os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	a.logger, err = logging.New(level, logging.EncodingConsole)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.registry, err = codes.Build(cfg.RegistryFile)
	if err != nil {
		return err
	}

	a.renderer, err = newRenderer(a.output, out)
	return err
}

// newEngine builds a fresh engine; state lives only for one invocation
func (a *app) newEngine() (*router.Engine, error) {
	diagnoser, err := router.NewDiagnoser(
		[]router.DiagnosisRule{{Condition: a.cfg.DiagnosisRule, Result: router.DiagnosisPorous}},
		router.DiagnosisDepleted,
		a.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid diagnosis rule: %w", err)
	}
	return router.NewEngine(a.registry, a.logger, router.WithDiagnoser(diagnoser)), nil
}
