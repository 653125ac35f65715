package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asalih/go-msgcfb"
)

var namedCmd = &cobra.Command{
	Use:   "named [file]",
	Short: "Print the named property GUID, entry and string tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cf, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer cf.Close()

		return printNamed(cmd.OutOrStdout(), cf)
	},
}

func printNamed(out io.Writer, cf *mscfb.CompoundFile) error {
	named, err := cf.NamedProperties()
	if named == nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "GUIDs")
	for i, g := range named.GUIDs {
		fmt.Fprintf(w, "  %d\t%v\n", i+3, g)
	}

	fmt.Fprintln(w, "Properties")
	fmt.Fprintln(w, "  ID\tGUID\tKIND\tNAME")
	for _, p := range named.All() {
		kind := "id"
		if p.IsString {
			kind = "string"
		}
		fmt.Fprintf(w, "  0x%04X\t%v\t%s\t%s\n", p.ID, p.GUID, kind, p.Name)
	}

	fmt.Fprintln(w, "Strings")
	for _, off := range named.StringOffsets() {
		fmt.Fprintf(w, "  %d\t%s\n", off, named.Strings[off])
	}

	fmt.Fprintf(w, "Mapping streams\t%d\n", len(named.Mappings))

	if err := w.Flush(); err != nil {
		return err
	}
	return err
}
