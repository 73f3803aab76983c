package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andresmejia3/rollcall/internal/mailer"
	"github.com/andresmejia3/rollcall/internal/utils"
)

// actions are what the interactive menu dispatches to. Tests swap them out.
type actions struct {
	capture   func(ctx context.Context, identity string) error
	recognize func(ctx context.Context) error
	email     func(ctx context.Context, recipients []string) error
}

func menuActions() actions {
	return actions{
		capture: func(ctx context.Context, identity string) error {
			return runCapture(ctx, captureOpts{Identity: identity, Photos: Cfg.Camera.Photos, Camera: Cfg.Camera.Index})
		},
		recognize: func(ctx context.Context) error {
			return runRecognize(ctx, recognizeOpts{Tolerance: Cfg.Recognition.Tolerance, Camera: Cfg.Camera.Index})
		},
		email: runEmail,
	}
}

const menuText = `
========== ROLLCALL ==========
1. Capture face data
2. Recognize and mark attendance
3. Email attendance report
4. Exit
`

// runMenu loops until the operator picks exit, input runs out, or ctx ends.
// A failed action is reported and the menu is shown again.
func runMenu(ctx context.Context, in io.Reader, out io.Writer, act actions) {
	reader := bufio.NewReader(in)

	for ctx.Err() == nil {
		fmt.Fprint(out, menuText)
		choice, ok := prompt(reader, out, "Enter your choice: ")
		if !ok {
			return
		}

		var err error
		switch choice {
		case "1":
			name, _ := prompt(reader, out, "Enter the name of the person: ")
			if name == "" {
				fmt.Fprintln(out, "❌ Name cannot be empty.")
				continue
			}
			err = act.capture(ctx, name)
		case "2":
			err = act.recognize(ctx)
		case "3":
			line, _ := prompt(reader, out, "Enter recipient emails (comma separated): ")
			err = act.email(ctx, mailer.ParseRecipients(line))
		case "4":
			fmt.Fprintln(out, "👋 Exiting.")
			return
		default:
			fmt.Fprintln(out, "Invalid choice. Please try again.")
			continue
		}

		if err != nil {
			utils.ShowError("Action failed", err, failedCommand(err))
		}
	}
}

// prompt reads one trimmed line. ok is false once input is exhausted.
func prompt(r *bufio.Reader, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
