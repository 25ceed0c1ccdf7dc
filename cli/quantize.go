package cli

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"pixpal/logging"
	"pixpal/oops"
	"pixpal/palette"
	"pixpal/pixel"
	"pixpal/png"
	"pixpal/storage"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
)

func init() {
	var colors string

	quantizeCommand := &cobra.Command{
		Use:   "quantize [input] [output]",
		Short: "Map any PNG, JPEG, GIF or BMP onto a fixed palette and write an indexed PNG",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			defer logging.LogPanics(nil)
			ctx := context.Background()

			pal, err := palette.Parse(strings.Split(colors, ",")...)
			exitOnError(err, "invalid --palette")

			data, err := storage.LoadBytes(ctx, args[0])
			exitOnError(err, "failed to load image")

			out, err := quantize(data, pal, pngOptions())
			exitOnError(err, "failed to quantize image")

			written, err := storage.SaveBytes(ctx, args[1], out)
			exitOnError(err, "failed to save image")
			logging.Info().Str("output", written).Int("colors", len(pal)).Msg("Quantized image")
		},
	}
	quantizeCommand.Flags().StringVar(&colors, "palette", "#000,#fff", "comma-separated palette colors")
	RootCommand.AddCommand(quantizeCommand)
}

func quantize(data []byte, pal palette.Palette, opts png.Options) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, oops.New(err, "failed to decode image")
	}
	logging.Debug().Str("format", format).Msg("decoded source image")

	src, err := pixel.FromImage(img)
	if err != nil {
		return nil, err
	}
	dst, err := pixel.NewIndexed(src.Width, src.Height, pal, nil)
	if err != nil {
		return nil, err
	}
	if err := dst.Quantize(src); err != nil {
		return nil, err
	}
	return dst.EncodePNG(opts)
}
