package cli

import (
	"context"

	"pixpal/logging"
	"pixpal/png"
	"pixpal/storage"

	"github.com/spf13/cobra"
)

func init() {
	var filterName string

	recodeCommand := &cobra.Command{
		Use:   "recode [input] [output]",
		Short: "Decode an indexed PNG and write it back as an 8-bit indexed PNG",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			defer logging.LogPanics(nil)
			ctx := context.Background()

			filter, err := png.ParseFilterType(filterName)
			exitOnError(err, "invalid --filter")

			data, err := storage.LoadBytes(ctx, args[0])
			exitOnError(err, "failed to load image")

			out, err := recode(data, pngOptions(), filter)
			exitOnError(err, "failed to recode image")

			written, err := storage.SaveBytes(ctx, args[1], out)
			exitOnError(err, "failed to save image")
			logging.Info().
				Str("output", written).
				Int("before", len(data)).
				Int("after", len(out)).
				Msg("Recoded image")
		},
	}
	recodeCommand.Flags().StringVar(&filterName, "filter", png.FilterNone.String(), "row filter: none, sub, up, average or paeth")
	RootCommand.AddCommand(recodeCommand)
}

// recode re-encodes at 8 bits per pixel, keeping palette, transparency and background.
func recode(data []byte, opts png.Options, filter png.FilterType) ([]byte, error) {
	doc, err := png.Decode(data, opts)
	if err != nil {
		return nil, err
	}
	out, err := png.NewIndexed(doc.Width(), doc.Height(), doc.Palette, doc.Pixels)
	if err != nil {
		return nil, err
	}
	out.BackgroundIndex = doc.BackgroundIndex

	opts.Filter = filter
	return out.Encode(opts)
}
