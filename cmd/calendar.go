package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shiftsync/internal/calendar"
	"shiftsync/internal/logger"
	"shiftsync/pkg/models"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar [shifts-json]",
	Short: "Generate an iCalendar (.ics) file from extracted shifts",
	Long: `Convert a shifts JSON file (as produced by the scan and vision commands)
into an iCalendar file with one event per shift. Shifts that end before
they start are treated as crossing midnight.`,
	Example: `  # Extract shifts and turn them into a calendar
  shiftsync scan vaktplan.jpg -o shifts.json
  shiftsync calendar shifts.json --owner "Kari" -o vakter.ics`,
	Args: cobra.ExactArgs(1),
	RunE: runCalendar,
}

func init() {
	rootCmd.AddCommand(calendarCmd)

	calendarCmd.Flags().StringP("output", "o", "", "Output .ics file path (default: stdout)")
	calendarCmd.Flags().String("owner", "", "Shift owner name used in event summaries (default: $SHIFT_OWNER_NAME)")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("calendar")

	outputPath, _ := cmd.Flags().GetString("output")
	owner, _ := cmd.Flags().GetString("owner")
	if owner == "" {
		owner = os.Getenv("SHIFT_OWNER_NAME")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Error().Err(err).Str("file", args[0]).Msg("Failed to read shifts file")
		return fmt.Errorf("failed to read shifts file: %w", err)
	}

	shifts, err := decodeShiftsFile(data)
	if err != nil {
		return err
	}
	if len(shifts) == 0 {
		return fmt.Errorf("no shifts found in %s", args[0])
	}

	ics, err := calendar.NewGenerator().Generate(shifts, owner)
	if err != nil {
		log.Error().Err(err).Msg("Calendar generation failed")
		return fmt.Errorf("calendar generation failed: %w", err)
	}

	log.Info().
		Int("shifts", len(shifts)).
		Msg("Calendar generated")

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(ics), 0644); err != nil {
			return fmt.Errorf("failed to write calendar file: %w", err)
		}
		log.Info().Str("output_file", outputPath).Msg("Calendar written to file")
		return nil
	}

	fmt.Print(ics)
	return nil
}

// decodeShiftsFile accepts either a full pipeline result object or a bare
// shift array.
func decodeShiftsFile(data []byte) ([]models.Shift, error) {
	var result models.PipelineResult
	if err := json.Unmarshal(data, &result); err == nil && len(result.Shifts) > 0 {
		return result.Shifts, nil
	}

	var shifts []models.Shift
	if err := json.Unmarshal(data, &shifts); err != nil {
		return nil, fmt.Errorf("shifts file is neither a result object nor a shift array: %w", err)
	}
	return shifts, nil
}
