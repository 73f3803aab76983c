package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/rollcall/internal/attendance"
	"github.com/andresmejia3/rollcall/internal/camera"
	"github.com/andresmejia3/rollcall/internal/descriptors"
	"github.com/andresmejia3/rollcall/internal/matcher"
	"github.com/andresmejia3/rollcall/internal/recognize"
	"github.com/andresmejia3/rollcall/internal/utils"
	"github.com/spf13/cobra"
)

// recognizeOpts configures a recognition run
type recognizeOpts struct {
	Tolerance float64
	Camera    int
	Input     string
	Headless  bool
}

var recognizeFlags recognizeOpts

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Recognise faces from the webcam and mark attendance",
	Long:  "Matches every detected face against the enrolled face data. Each recognised person is written to today's attendance file once per day. Press 'q' in the preview window to stop.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		opts := recognizeFlags
		if !cmd.Flags().Changed("tolerance") {
			opts.Tolerance = Cfg.Recognition.Tolerance
		}
		if !cmd.Flags().Changed("camera") {
			opts.Camera = Cfg.Camera.Index
		}
		if err := runRecognize(cmd.Context(), opts); err != nil {
			utils.ShowError("Recognition failed", err, failedCommand(err))
			return err
		}
		return nil
	},
}

func init() {
	recognizeCmd.Flags().Float64VarP(&recognizeFlags.Tolerance, "tolerance", "t", matcher.DefaultTolerance, "Maximum face distance accepted as a match (lower is stricter)")
	recognizeCmd.Flags().IntVarP(&recognizeFlags.Camera, "camera", "c", 0, "Webcam device index")
	recognizeCmd.Flags().StringVarP(&recognizeFlags.Input, "input", "i", "", "Read frames from a video file or stream URL instead of the webcam")
	recognizeCmd.Flags().BoolVar(&recognizeFlags.Headless, "headless", false, "Do not open a preview window")
	rootCmd.AddCommand(recognizeCmd)
}

// attendanceLog builds today's register, mirrored to the ledger when one is connected.
func attendanceLog() *attendance.Log {
	log := attendance.New(Cfg.Paths.AttendanceDir)
	if DB != nil {
		log.Mirror = DB
	}
	return log
}

func runRecognize(ctx context.Context, opts recognizeOpts) error {
	if err := matcher.ValidateTolerance(opts.Tolerance); err != nil {
		return err
	}

	known, err := descriptors.Load(Cfg.Paths.EncodingFile)
	if errors.Is(err, descriptors.ErrNoStore) {
		fmt.Fprintln(os.Stderr, "❌ No face data found. Please capture face data first.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "🗂️  Loaded %d face samples.\n", len(known))

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

	view := openViewer(opts.Headless, "Face Recognition - press q to stop")
	if view != nil {
		defer view.Close()
	}

	fmt.Fprintln(os.Stderr, "🔍 Recognising... press 'q' in the window (or Ctrl+C) to stop.")
	session := recognize.NewSession(known, opts.Tolerance, attendanceLog())
	summary, err := session.Run(ctx, src, view, eng)
	printSummary(summary)
	return err
}

func printSummary(s recognize.Summary) {
	fmt.Fprintf(os.Stderr, "\n🏁 Recognition Complete. %d frames, %d faces, %d unknown.\n", s.Frames, s.Faces, s.Unknown)
	if len(s.Marked) == 0 {
		fmt.Println("No new attendance marked.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tTIME")
	fmt.Fprintln(w, "----\t----")
	for _, e := range s.Marked {
		fmt.Fprintf(w, "%s\t%s\n", e.Identity, e.Time)
	}
	w.Flush()
}
