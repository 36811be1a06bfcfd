package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vasildeda/notes2pdf/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the notes in the database",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := store.Open(cfg.Database)
		if err != nil {
			fatal("opening database", err)
		}
		defer st.Close()

		notes, err := st.ListNotes(context.Background())
		if err != nil {
			fatal("listing notes", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PK\tMODIFIED\tFOLDER\tTITLE")
		for _, n := range notes {
			modified := ""
			if !n.Modified.IsZero() {
				modified = n.Modified.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.PK, modified, n.Folder, n.Title)
		}
		if err := w.Flush(); err != nil {
			fatal("writing listing", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
