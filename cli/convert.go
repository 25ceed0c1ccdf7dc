package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pixpal/compositing"
	"pixpal/logging"
	"pixpal/mapping"
	"pixpal/palette"
	"pixpal/pixel"
	"pixpal/png"
	"pixpal/storage"
	"pixpal/utils"

	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"
)

type convertOptions struct {
	Format         string // ppm, bmp or png; empty means from the output name
	ScaleX, ScaleY float64
	Over           string // background color to compose onto, empty for none
	Blend          string
}

func init() {
	var opts convertOptions

	convertCommand := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Render an indexed PNG as PPM, BMP or PNG, optionally scaled and composed over a color",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			defer logging.LogPanics(nil)
			ctx := context.Background()

			data, err := storage.LoadBytes(ctx, args[0])
			exitOnError(err, "failed to load image")

			if opts.Format == "" {
				opts.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(args[1])), ".")
			}
			out, err := convert(data, pngOptions(), opts)
			exitOnError(err, "failed to convert image")

			written, err := storage.SaveBytes(ctx, args[1], out)
			exitOnError(err, "failed to save image")
			logging.Info().Str("output", written).Str("format", opts.Format).Msg("Converted image")
		},
	}
	flags := convertCommand.Flags()
	flags.StringVar(&opts.Format, "format", "", "ppm, bmp or png (default: from the output extension)")
	flags.Float64Var(&opts.ScaleX, "scale-x", 1, "horizontal nearest-neighbor scale")
	flags.Float64Var(&opts.ScaleY, "scale-y", 1, "vertical nearest-neighbor scale")
	flags.StringVar(&opts.Over, "over", "", "compose onto this background color (#rgb, #rrggbb or #rrggbbaa)")
	flags.StringVar(&opts.Blend, "blend", compositing.Normal.Name, fmt.Sprintf("compositing mode used with --over: %s", strings.Join(compositing.Names(), ", ")))
	RootCommand.AddCommand(convertCommand)
}

func convert(data []byte, pngOpts png.Options, opts convertOptions) ([]byte, error) {
	src, err := pixel.DecodePNG(data, pngOpts)
	if err != nil {
		return nil, err
	}

	rgba, err := src.ToRGBA(opts.ScaleX, opts.ScaleY)
	if err != nil {
		return nil, err
	}
	if opts.Over != "" {
		if rgba, err = composeOver(rgba, opts.Over, opts.Blend); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	switch opts.Format {
	case "ppm":
		rgb := utils.Must1(pixel.New(rgba.Width, rgba.Height, pixel.RGB, nil))
		if err := pixel.Blit(rgb, rgba, pixel.BlitOptions{}); err != nil {
			return nil, err
		}
		if err := utils.EncodePPM(&buf, rgb.Width, rgb.Height, rgb.Pix); err != nil {
			return nil, err
		}
	case "bmp":
		img, err := rgba.NRGBA()
		if err != nil {
			return nil, err
		}
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "png":
		// Back onto the source palette, which may be lossy once composed.
		indexed, err := pixel.NewIndexed(rgba.Width, rgba.Height, src.Palette, nil)
		if err != nil {
			return nil, err
		}
		if err := indexed.Quantize(rgba); err != nil {
			return nil, err
		}
		return indexed.EncodePNG(pngOpts)
	default:
		return nil, fmt.Errorf("unknown output format %q, expected ppm, bmp or png", opts.Format)
	}
	return buf.Bytes(), nil
}

// composeOver returns a new buffer filled with the background color with img
// composed on top.
func composeOver(img *pixel.Buffer, background, blend string) (*pixel.Buffer, error) {
	bg, err := palette.ParseColor(background)
	if err != nil {
		return nil, err
	}
	policy, err := compositing.ByName(blend)
	if err != nil {
		return nil, err
	}

	dst, err := pixel.New(img.Width, img.Height, pixel.RGBA, nil)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		copy(dst.Pix[i:i+4], bg[:])
	}
	err = pixel.Blit(dst, img, pixel.BlitOptions{
		Mapping:     mapping.RGBACompatibleToRGBA,
		Compositing: policy,
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}
