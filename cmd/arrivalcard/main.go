package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arrivalcard/internal/config"
	"arrivalcard/internal/engine"
	"arrivalcard/internal/logging"
	"arrivalcard/internal/types"
)

const version = "1.0.0"

var (
	configPath string
	verbose    bool
	outputPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "arrivalcard",
	Short: "Digital arrival-card submission engine",
	Long: `arrivalcard drives the government arrival-card web API directly:
reference-code resolution, payload validation, the nine-step submission
protocol, and retry handling. No browser automation involved.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <traveler.json>",
	Short: "Submit a traveler's arrival card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if configPath != "" {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read traveler file: %w", err)
		}
		var req types.TravelerRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("failed to parse traveler file: %w", err)
		}

		eng := engine.New(cfg, logger, logging.NewAudit(logger))
		result := eng.Submit(cmd.Context(), &req)

		if !result.Success {
			f := result.Failure
			fmt.Fprintf(os.Stderr, "submission failed: %s\n", f.Message)
			for _, s := range f.Suggestions {
				fmt.Fprintf(os.Stderr, "  - %s\n", s)
			}
			fmt.Fprintf(os.Stderr, "support reference: %s\n", f.CorrelationID)
			os.Exit(1)
		}

		fmt.Printf("arrival card issued: %s\n", result.CardNumber)
		if len(result.Document) > 0 && outputPath != "" {
			if err := os.WriteFile(outputPath, result.Document, 0o644); err != nil {
				return fmt.Errorf("card issued but writing document failed: %w", err)
			}
			fmt.Printf("document saved to %s\n", outputPath)
		}
		if result.DocumentError != "" {
			fmt.Fprintf(os.Stderr, "document download failed: %s\n", result.DocumentError)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arrivalcard %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	submitCmd.Flags().StringVarP(&outputPath, "output", "o", "arrival-card.pdf", "where to write the downloaded document")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
