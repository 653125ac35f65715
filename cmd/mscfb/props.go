package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asalih/go-msgcfb"
	"github.com/asalih/go-msgcfb/mapi"
)

var propsValues bool

var propsCmd = &cobra.Command{
	Use:   "props [file] [index]",
	Short: "Decode a properties stream",
	Long: `Decode a __properties_version1.0 stream.

Without an index the message's top level properties stream is decoded.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cf, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer cf.Close()

		var index uint32
		if len(args) == 2 {
			i, err := strconv.ParseUint(args[1], 0, 32)
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			index = uint32(i)
		} else {
			s, err := cf.OpenStream(mscfb.PROPERTIES_STREAM_NAME)
			if err != nil {
				return err
			}
			index = s.StreamId
		}

		if err := printProperties(cmd.OutOrStdout(), cf, index); err != nil {
			return err
		}
		printWarnings(cf)
		return nil
	},
}

func init() {
	propsCmd.Flags().BoolVar(&propsValues, "values", false, "read string values from their streams")
}

func printProperties(out io.Writer, cf *mscfb.CompoundFile, index uint32) error {
	props, err := cf.Properties(index)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tNAME\tTYPE\tFLAGS\tVALUE")
	for _, p := range props {
		value := fmt.Sprint(p.Value())
		if p.IsVariableWidth() {
			value = fmt.Sprintf("%d bytes", p.Size)
			if propsValues && (p.Type == mapi.PtypString || p.Type == mapi.PtypString8) {
				if s, err := cf.PropertyString(index, p); err == nil {
					value = strconv.Quote(s)
				}
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t0x%08X\t%s\n", mapi.FormatTag(p.Tag), p.Name, p.TypeName(), p.Flags, value)
	}
	return w.Flush()
}
