package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andresmejia3/rollcall/internal/attendance"
	"github.com/andresmejia3/rollcall/internal/camera"
	"github.com/andresmejia3/rollcall/internal/descriptors"
	"github.com/andresmejia3/rollcall/internal/enroll"
	"github.com/andresmejia3/rollcall/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// captureOpts configures an enrollment run
type captureOpts struct {
	Identity string
	Photos   int
	Camera   int
	Input    string
	Headless bool
}

var captureFlags captureOpts

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture face samples for a person from the webcam",
	Long:  "Opens the webcam, saves every frame that contains a face under the captured faces directory and appends one descriptor per face to the encoding file. Press 'q' in the preview window to stop early.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		opts := captureFlags
		if !cmd.Flags().Changed("photos") {
			opts.Photos = Cfg.Camera.Photos
		}
		if !cmd.Flags().Changed("camera") {
			opts.Camera = Cfg.Camera.Index
		}
		if opts.Identity == "" {
			fmt.Print("Enter the name of the person: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			opts.Identity = strings.TrimSpace(line)
		}
		if err := runCapture(cmd.Context(), opts); err != nil {
			utils.ShowError("Capture failed", err, failedCommand(err))
			return err
		}
		return nil
	},
}

func init() {
	captureCmd.Flags().StringVarP(&captureFlags.Identity, "name", "n", "", "Name of the person being enrolled (prompted if empty)")
	captureCmd.Flags().IntVarP(&captureFlags.Photos, "photos", "p", enroll.DefaultPhotos, "Number of face samples to capture")
	captureCmd.Flags().IntVarP(&captureFlags.Camera, "camera", "c", 0, "Webcam device index")
	captureCmd.Flags().StringVarP(&captureFlags.Input, "input", "i", "", "Read frames from a video file or stream URL instead of the webcam")
	captureCmd.Flags().BoolVar(&captureFlags.Headless, "headless", false, "Do not open a preview window")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(ctx context.Context, opts captureOpts) error {
	opts.Identity = attendance.NormalizeIdentity(opts.Identity)
	if err := enroll.ValidateIdentity(opts.Identity); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	src, err := openSource(ctx, opts.Camera, opts.Input)
	if err != nil {
		if errors.Is(err, camera.ErrCameraUnavailable) {
			fmt.Fprintf(os.Stderr, "❌ Could not open %s.\n", sourceName(opts.Camera, opts.Input))
		}
		return err
	}
	defer src.Close()

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	view := openViewer(opts.Headless, "Capturing Faces - press q to stop")
	if view != nil {
		defer view.Close()
	}

	bar := progressbar.NewOptions(opts.Photos,
		progressbar.OptionSetDescription(fmt.Sprintf("📸 Capturing %s", opts.Identity)),
		progressbar.OptionSetWriter(os.Stderr), // Write bar to Stderr
		progressbar.OptionShowCount(),
	)

	records, err := enroll.Run(ctx, src, view, eng, enroll.Options{
		Identity: opts.Identity,
		Photos:   opts.Photos,
		SaveDir:  Cfg.Paths.CapturedDir,
		Progress: func(n int) { bar.Set(n) },
	})
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	if errors.Is(err, enroll.ErrNoFaces) {
		fmt.Fprintln(os.Stderr, "⚠️  No faces were captured. Nothing saved.")
		return nil
	}
	// Partial captures are still worth keeping
	if len(records) > 0 {
		if saveErr := descriptors.Append(Cfg.Paths.EncodingFile, records); saveErr != nil {
			return fmt.Errorf("save face data: %w", saveErr)
		}
		fmt.Fprintf(os.Stderr, "✅ Saved %d face samples for %s.\n", len(records), opts.Identity)
	}
	return err
}
