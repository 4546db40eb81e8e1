package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shiftsync/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "shiftsync",
	Short: "ShiftSync - convert Norwegian work-schedule images to structured shifts",
	Long: `ShiftSync converts photographed or scanned Norwegian work-schedule images
into structured shift records and calendar files.

Two extraction engines are available: a local Tesseract OCR pipeline with
image preprocessing and confidence scoring, and an AI vision pipeline that
reads the schedule directly from the image and falls back to local OCR on
failure.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("ShiftSync CLI executed")

		fmt.Println("Welcome to ShiftSync!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
