package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"pixpal/logging"
	"pixpal/png"
	"pixpal/storage"

	"github.com/spf13/cobra"
)

func init() {
	var showPalette bool

	inspectCommand := &cobra.Command{
		Use:   "inspect [image]",
		Short: "List the chunks of a PNG and describe its header and palette",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			defer logging.LogPanics(nil)

			data, err := storage.LoadBytes(context.Background(), args[0])
			exitOnError(err, "failed to load image")
			exitOnError(inspect(os.Stdout, data, pngOptions(), showPalette), "failed to inspect image")
		},
	}
	inspectCommand.Flags().BoolVar(&showPalette, "palette", true, "print every palette entry")
	RootCommand.AddCommand(inspectCommand)
}

func inspect(w io.Writer, data []byte, opts png.Options, showPalette bool) error {
	r, err := png.NewChunkReader(data, opts.CheckCRC)
	if err != nil {
		return err
	}
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		kind := "ancillary"
		if chunk.Critical() {
			kind = "critical"
		}
		fmt.Fprintf(w, "%s  %8d bytes  crc %08x  %s\n", chunk.Type, len(chunk.Data), chunk.CRC, kind)
	}

	doc, err := png.Decode(data, opts)
	if err != nil {
		return err
	}
	h := doc.Header
	fmt.Fprintf(w, "size: %dx%d, bit depth %d, %s\n", h.Width, h.Height, h.BitDepth, h.ColorType)
	fmt.Fprintf(w, "palette: %d entries\n", len(doc.Palette))
	if showPalette {
		for i, c := range doc.Palette {
			fmt.Fprintf(w, "  %3d  %s\n", i, c)
		}
	}
	if bg, ok := doc.Background(); ok {
		fmt.Fprintf(w, "background: %d (%s)\n", doc.BackgroundIndex, bg)
	}

	used := make(map[byte]struct{})
	for _, v := range doc.Pixels {
		used[v] = struct{}{}
	}
	fmt.Fprintf(w, "colors used: %d\n", len(used))
	return nil
}
