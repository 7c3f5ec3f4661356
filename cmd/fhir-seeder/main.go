package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/fhir-seeder/internal/config"
	"github.com/ehr/fhir-seeder/internal/fhir"
	"github.com/ehr/fhir-seeder/internal/report"
	"github.com/ehr/fhir-seeder/internal/seeder"
	"github.com/ehr/fhir-seeder/internal/stubserver"
	"github.com/ehr/fhir-seeder/internal/synth"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fhir-seeder",
		Short:         "Populate a FHIR server with synthetic test records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(stubServerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger follows the server convention: JSON logs by default, pretty
// console output in development.
func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "POST the patient and observation fixtures to the FHIR server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg)
			reporter := report.NewConsole(os.Stdout, cfg.NoColor)
			client := fhir.NewClient(cfg.BaseURL, logger, fhir.WithTimeout(cfg.HTTPTimeout()))

			s := seeder.New(client, seeder.FileLoader{}, reporter, logger, seeder.Options{
				ServerURL:        cfg.BaseURL,
				PatientPath:      cfg.PatientPath(),
				ObservationsPath: cfg.ObservationsPath(),
				LaunchURL:        cfg.LaunchURL,
			})

			// Operator interrupts must exit cleanly and non-zero, not
			// leave a half-reported run hanging.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			done := make(chan error, 1)
			go func() {
				_, err := s.Run(ctx)
				done <- err
			}()

			select {
			case sig := <-sigCh:
				cancel()
				fmt.Fprintln(os.Stdout)
				fmt.Fprintln(os.Stdout, "Interrupted by user")
				logger.Warn().Str("signal", sig.String()).Msg("run interrupted")
				os.Exit(1)
			case err := <-done:
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic patient and observation fixtures to the fixture directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			seed, _ := cmd.Flags().GetInt64("seed")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := synth.WriteFixtures(cfg.FixtureDir, cfg.PatientFile, cfg.ObservationsFile, count, seed); err != nil {
				return err
			}

			fmt.Printf("Wrote %s and %s (%d observations) to %s\n",
				cfg.PatientFile, cfg.ObservationsFile, count, cfg.FixtureDir)
			return nil
		},
	}
	cmd.Flags().Int("count", 3, "Number of observations to generate")
	cmd.Flags().Int64("seed", 0, "Random seed (0 picks a time-based seed)")
	return cmd
}

func stubServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stub-server",
		Short: "Run a local in-memory FHIR stub for exercising the seeder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := newLogger(cfg)
			srv := stubserver.New(logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(":" + cfg.StubPort)
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				logger.Info().Str("signal", sig.String()).Msg("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			case err := <-errCh:
				return err
			}
		},
	}
}
