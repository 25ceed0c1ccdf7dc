package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"pixpal/logging"
	"pixpal/png"
	"pixpal/storage"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type batchResult struct {
	ID     string
	Header png.Header
	Colors int
	Err    error
}

func init() {
	var jobs int

	batchCommand := &cobra.Command{
		Use:   "batch [images...]",
		Short: "Load and decode many images in parallel and summarize them",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			defer logging.LogPanics(nil)

			results := batch(context.Background(), args, pngOptions(), jobs)
			if failed := printBatch(os.Stdout, results); failed > 0 {
				logging.Error().Int("failed", failed).Int("total", len(results)).Msg("Some images could not be decoded")
				os.Exit(1)
			}
		},
	}
	batchCommand.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of images decoded at once")
	RootCommand.AddCommand(batchCommand)
}

// batch decodes every image independently. Failures are reported per image
// and don't stop the others.
func batch(ctx context.Context, ids []string, opts png.Options, jobs int) []batchResult {
	results := make([]batchResult, len(ids))

	var g errgroup.Group
	g.SetLimit(max(1, jobs))
	for i, id := range ids {
		g.Go(func() error {
			res := batchResult{ID: id}
			logger := logging.With().Str("image", id).Logger()
			defer func() {
				if r := recover(); r != nil {
					logging.LogPanicValue(&logger, r, "panic while decoding")
					res.Err = fmt.Errorf("panic: %v", r)
				}
				if res.Err != nil {
					logger.Debug().Err(res.Err).Msg("image failed")
				}
				results[i] = res
			}()

			data, err := storage.LoadBytes(ctx, id)
			if err != nil {
				res.Err = err
				return nil
			}
			doc, err := png.Decode(data, opts)
			if err != nil {
				res.Err = err
				return nil
			}
			res.Header = doc.Header
			res.Colors = len(doc.Palette)
			return nil
		})
	}
	g.Wait()
	return results
}

func printBatch(w io.Writer, results []batchResult) (failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s: error: %v\n", r.ID, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s: %dx%d, bit depth %d, %d colors\n", r.ID, r.Header.Width, r.Header.Height, r.Header.BitDepth, r.Colors)
	}
	return failed
}
