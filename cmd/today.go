package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/rollcall/internal/attendance"
	"github.com/andresmejia3/rollcall/internal/types"
	"github.com/spf13/cobra"
)

var (
	todayDay    string
	todayLedger bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show who has been marked present",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		day, err := pickDay(todayDay)
		if err != nil {
			return err
		}

		var entries []types.AttendanceEntry
		if todayLedger {
			if DB == nil {
				return errors.New("--ledger needs a database (--db or DATABASE_URL)")
			}
			entries, err = DB.DayEntries(cmd.Context(), day)
		} else {
			entries, err = attendance.ReadEntries(attendance.New(Cfg.Paths.AttendanceDir).DayFile(day))
			if errors.Is(err, attendance.ErrMissingLog) {
				fmt.Println("No attendance recorded for this day.")
				return nil
			}
		}
		if err != nil {
			return err
		}

		printEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	todayCmd.Flags().StringVarP(&todayDay, "date", "d", "", "Day to show as DD-MM-YY (default: today)")
	todayCmd.Flags().BoolVar(&todayLedger, "ledger", false, "Read from the database ledger instead of the attendance file")
	rootCmd.AddCommand(todayCmd)
}

func printEntries(out io.Writer, entries []types.AttendanceEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No attendance recorded for this day.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tTIME")
	fmt.Fprintln(w, "-\t----\t----")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, e.Identity, e.Time)
	}
	w.Flush()
}
