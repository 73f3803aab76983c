package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/rollcall/internal/descriptors"
	"github.com/andresmejia3/rollcall/internal/types"
	"github.com/andresmejia3/rollcall/internal/utils"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all enrolled identities",
	Run: func(cmd *cobra.Command, args []string) {
		runList(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(out io.Writer) {
	records, err := descriptors.Load(Cfg.Paths.EncodingFile)
	if errors.Is(err, descriptors.ErrNoStore) {
		fmt.Fprintln(out, "No identities enrolled yet.")
		return
	}
	if err != nil {
		utils.Die("Failed to load face data", err, nil)
	}

	printIdentities(out, descriptors.Summarize(records))
}

func printIdentities(out io.Writer, identities []types.IdentitySummary) {
	if len(identities) == 0 {
		fmt.Fprintln(out, "No identities enrolled yet.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tFACE COUNT")
	fmt.Fprintln(w, "----\t----------")

	for _, id := range identities {
		fmt.Fprintf(w, "%s\t%d\n", id.Name, id.Count)
	}
	w.Flush()
}
