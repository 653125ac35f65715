package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asalih/go-msgcfb"
)

var treeDescribe bool

var treeCmd = &cobra.Command{
	Use:   "tree [file]",
	Short: "Print the directory tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cf, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer cf.Close()

		if err := printTree(cmd.OutOrStdout(), cf); err != nil {
			return err
		}
		printWarnings(cf)
		return nil
	},
}

func init() {
	treeCmd.Flags().BoolVarP(&treeDescribe, "long", "l", false, "print every field of each entry")
}

func printTree(out io.Writer, cf *mscfb.CompoundFile) error {
	return cf.Walk(func(e *mscfb.Entry, depth int) error {
		indent := strings.Repeat("  ", depth)
		switch {
		case e.IsStream():
			fmt.Fprintf(out, "%s%s  [%d] %v, %d bytes\n", indent, e.Name, e.Index, e.Kind, e.StreamLen)
		default:
			fmt.Fprintf(out, "%s%s/  [%d] %v\n", indent, e.Name, e.Index, e.Kind)
		}

		if !treeDescribe {
			return nil
		}
		desc, err := cf.Describe(e.Index)
		if err != nil {
			return err
		}
		for _, row := range desc {
			fmt.Fprintf(out, "%s    %s: %s\n", indent, row.Key, row.Value)
		}
		return nil
	})
}
