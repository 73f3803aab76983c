package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/andresmejia3/rollcall/internal/descriptors"
	"github.com/andresmejia3/rollcall/internal/matcher"
	"github.com/andresmejia3/rollcall/internal/types"
	"github.com/andresmejia3/rollcall/internal/utils"
	"github.com/spf13/cobra"
)

var (
	identifyTolerance float64
	identifyTop       int
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image_path>",
	Short: "Match the face in a JPEG image against the enrolled face data",
	Long:  "Does not mark attendance. Useful to check enrollment quality and pick a tolerance.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if !cmd.Flags().Changed("tolerance") {
			identifyTolerance = Cfg.Recognition.Tolerance
		}
		return runIdentify(args[0], identifyTolerance, identifyTop)
	},
}

func init() {
	identifyCmd.Flags().Float64VarP(&identifyTolerance, "tolerance", "t", matcher.DefaultTolerance, "Maximum face distance accepted as a match")
	identifyCmd.Flags().IntVarP(&identifyTop, "top", "k", 5, "Number of nearest identities to show")
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(imagePath string, tolerance float64, top int) error {
	if err := matcher.ValidateTolerance(tolerance); err != nil {
		return err
	}
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		utils.ShowError("Input file does not exist", err, nil)
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

	eng, err := openEngine()
	if err != nil {
		utils.ShowError("Failed to load face models", err, nil)
		return err
	}
	defer eng.Close()

	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		utils.ShowError("Failed to read image file", err, nil)
		return err
	}

	fmt.Fprintln(os.Stderr, "🔍 Analyzing face...")
	faces, err := eng.Detect(imgData)
	if err != nil {
		utils.ShowError("Face detection failed", err, nil)
		return err
	}

	if len(faces) == 0 {
		fmt.Println("❌ No faces detected in the provided image.")
		return nil
	}
	if len(faces) > 1 {
		fmt.Printf("⚠️  Multiple faces detected (%d). Using the largest face.\n", len(faces))
	}
	best := largestFace(faces)

	res := matcher.Match(known, best.Descriptor, tolerance)
	if res.Matched {
		fmt.Printf("✅ Found Match: %s (distance %.4f)\n", res.Identity, res.Distance)
	} else {
		fmt.Printf("❌ %s (closest distance %.4f)\n", matcher.Unknown, res.Distance)
	}

	printNearest(os.Stdout, nearestIdentities(known, best.Descriptor), top)
	return nil
}

// largestFace picks the face with the biggest box, the first one on ties.
func largestFace(faces []types.Face) types.Face {
	best := faces[0]
	maxArea := best.Box.Dx() * best.Box.Dy()
	for _, f := range faces[1:] {
		if area := f.Box.Dx() * f.Box.Dy(); area > maxArea {
			maxArea = area
			best = f
		}
	}
	return best
}

type nearest struct {
	Identity string
	Distance float64
}

// nearestIdentities returns each identity's closest record distance, nearest first.
func nearestIdentities(known []types.DescriptorRecord, query []float64) []nearest {
	dists := matcher.Distances(known, query)
	index := make(map[string]int)
	var out []nearest
	for i, rec := range known {
		j, ok := index[rec.Identity]
		if !ok {
			index[rec.Identity] = len(out)
			out = append(out, nearest{Identity: rec.Identity, Distance: dists[i]})
			continue
		}
		if dists[i] < out[j].Distance {
			out[j].Distance = dists[i]
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Distance < out[b].Distance })
	return out
}

func printNearest(out io.Writer, list []nearest, top int) {
	if top > 0 && len(list) > top {
		list = list[:top]
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "\nNAME\tDISTANCE")
	fmt.Fprintln(w, "----\t--------")
	for _, n := range list {
		fmt.Fprintf(w, "%s\t%.4f\n", n.Identity, n.Distance)
	}
	w.Flush()
}
