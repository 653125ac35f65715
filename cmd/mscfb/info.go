package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asalih/go-msgcfb"
)

var infoTables bool

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show header, DIFAT, FAT and MiniFAT summaries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cf, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer cf.Close()

		return printInfo(cmd.OutOrStdout(), cf)
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoTables, "tables", false, "dump every FAT and MiniFAT entry")
}

type section struct {
	title string
	rows  []mscfb.KeyValue
}

func printInfo(out io.Writer, cf *mscfb.CompoundFile) error {
	sections := []section{
		{"Header", cf.HeaderSummary()},
		{"DIFAT", cf.DIFATSummary()},
		{"FAT", cf.FATSummary()},
		{"MiniFAT", cf.MiniFATSummary()},
	}
	if infoTables {
		sections = append(sections,
			section{"FAT entries", mscfb.TableEntries(cf.FAT.AllocTable)},
			section{"MiniFAT entries", mscfb.TableEntries(cf.MiniFAT.AllocTable)})
	}

	for _, s := range sections {
		fmt.Fprintf(out, "%s\n", s.title)
		if err := printKeyValues(out, s.rows); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	printWarnings(cf)
	return nil
}

func printKeyValues(out io.Writer, rows []mscfb.KeyValue) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(w, "  %s\t%s\n", row.Key, row.Value)
	}
	return w.Flush()
}

func printWarnings(cf *mscfb.CompoundFile) {
	warnings := cf.Diagnostics().Warnings()
	if len(warnings) == 0 || cfg.Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "%d warnings while decoding, rerun with --verbose to see them\n", len(warnings))
}
