package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/andresmejia3/rollcall/internal/attendance"
	"github.com/andresmejia3/rollcall/internal/mailer"
	"github.com/andresmejia3/rollcall/internal/report"
	"github.com/spf13/cobra"
)

var emailTo []string

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Export today's attendance and email it",
	Long:  "Converts today's attendance file to a spreadsheet and sends it as an attachment. SMTP settings come from the config file or SMTP_* environment variables (a .env file is read if present).",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runEmail(cmd.Context(), mailer.ParseRecipients(strings.Join(emailTo, ",")))
	},
}

func init() {
	emailCmd.Flags().StringSliceVar(&emailTo, "to", nil, "Recipient addresses (repeat or comma separate)")
	emailCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(emailCmd)
}

// runEmail exports today's register and mails it. A missing register is
// reported and nothing is sent.
func runEmail(ctx context.Context, recipients []string) error {
	if len(recipients) == 0 {
		return mailer.ErrNoRecipients
	}

	txt, xlsx := attendance.New(Cfg.Paths.AttendanceDir).Today()
	entries, err := report.Export(txt, xlsx)
	if errors.Is(err, attendance.ErrMissingLog) {
		fmt.Fprintln(os.Stderr, "❌ Attendance file not found. Nothing to send.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "📊 Exported %d entries to %s\n", len(entries), xlsx)

	fmt.Fprintf(os.Stderr, "📧 Sending report to %d recipient(s)...\n", len(recipients))
	if err := mailer.New(Cfg.Mail).Send(ctx, recipients, xlsx); err != nil {
		slog.Error("failed to send attendance email", "error", err)
		return err
	}
	fmt.Fprintln(os.Stderr, "✅ Email sent successfully!")
	return nil
}
