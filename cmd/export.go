package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/andresmejia3/rollcall/internal/attendance"
	"github.com/andresmejia3/rollcall/internal/report"
	"github.com/andresmejia3/rollcall/internal/utils"
	"github.com/spf13/cobra"
)

var exportDay string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a day's attendance file to a spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		day, err := pickDay(exportDay)
		if err != nil {
			return err
		}

		log := attendance.New(Cfg.Paths.AttendanceDir)
		txt, xlsx := log.DayFile(day), log.ReportFile(day)

		entries, err := report.Export(txt, xlsx)
		if errors.Is(err, attendance.ErrMissingLog) {
			fmt.Fprintf(os.Stderr, "❌ Attendance file not found: %s\n", txt)
			return err
		}
		if err != nil {
			utils.ShowError("Export failed", err, nil)
			return err
		}
		fmt.Fprintf(os.Stderr, "📊 Exported %d entries to %s\n", len(entries), xlsx)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDay, "date", "d", "", "Day to export as DD-MM-YY (default: today)")
	rootCmd.AddCommand(exportCmd)
}

// pickDay resolves a --date flag value, defaulting to now.
func pickDay(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	return attendance.ParseDay(value)
}
