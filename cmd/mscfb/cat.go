package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/asalih/go-msgcfb"
)

var (
	catHex   bool
	catEntry bool
)

var catCmd = &cobra.Command{
	Use:   "cat [file] [path|index]",
	Short: "Write the content of a stream to stdout",
	Long: `Write the content of a stream to stdout.

The stream is named by its path below the root, for example
/__substg1.0_0037001F, or by its directory index with --index.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cf, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer cf.Close()

		stream, err := openTarget(cf, args[1])
		if err != nil {
			return err
		}

		return copyStream(cmd.OutOrStdout(), stream)
	},
}

func init() {
	catCmd.Flags().BoolVarP(&catHex, "hex", "x", false, "hex dump instead of raw bytes")
	catCmd.Flags().BoolVar(&catEntry, "index", false, "treat the second argument as a directory index")
}

func openTarget(cf *mscfb.CompoundFile, target string) (*mscfb.Stream, error) {
	if !catEntry {
		return cf.OpenStream(target)
	}
	index, err := strconv.ParseUint(target, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid index %q: %w", target, err)
	}
	return cf.OpenEntry(uint32(index))
}

func copyStream(out io.Writer, stream *mscfb.Stream) error {
	var r io.Reader = stream
	if cfg.MaxCatBytes > 0 {
		r = io.LimitReader(stream, cfg.MaxCatBytes)
	}

	if catHex {
		dumper := hex.Dumper(out)
		defer dumper.Close()
		out = dumper
	}

	_, err := io.CopyBuffer(out, r, make([]byte, cfg.ChunkSize))
	return err
}
