package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andresmejia3/rollcall/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetDB       bool
	resetRecords  bool
	resetCaptures bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear attendance records, captured frames and the database ledger",
	Long:  "Clears generated data. By default it clears attendance records and the ledger. Enrolled face data is never removed; captured frames only go with --captures.",
	Run: func(cmd *cobra.Command, args []string) {
		// If no flags are set, default to the attendance side
		if !resetDB && !resetRecords && !resetCaptures {
			resetDB = true
			resetRecords = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetRecords {
			if confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete all attendance files in %q?", Cfg.Paths.AttendanceDir)) {
				fmt.Println("🗑️  Clearing Attendance Records...")
				removeDir(Cfg.Paths.AttendanceDir)
			}
		}

		if resetDB && DB != nil {
			if confirm(reader, "⚠️  Are you sure you want to DROP the attendance ledger?") {
				fmt.Println("🗑️  Clearing Database...")
				if err := DB.Reset(cmd.Context()); err != nil {
					utils.Die("Failed to reset database", err, nil)
				}
			}
		}

		if resetCaptures {
			if confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete all captured frames in %q?", Cfg.Paths.CapturedDir)) {
				fmt.Println("🗑️  Clearing Captured Frames...")
				removeDir(Cfg.Paths.CapturedDir)
			}
		}

		fmt.Println("✨ Reset Complete.")
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetDB, "ledger", false, "Clear the PostgreSQL attendance ledger")
	resetCmd.Flags().BoolVar(&resetRecords, "records", false, "Clear attendance text files and spreadsheets")
	resetCmd.Flags().BoolVar(&resetCaptures, "captures", false, "Clear saved capture frames")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func removeDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
