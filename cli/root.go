// Package cli is the pixpal command tree.
package cli

import (
	"fmt"
	"os"

	"pixpal/compression"
	"pixpal/config"
	"pixpal/logging"
	"pixpal/png"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var RootCommand = &cobra.Command{
	Use:   "pixpal",
	Short: "Inspect, convert and re-encode palette-indexed PNG images",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid log level %q: %v\n", logLevel, err)
			os.Exit(1)
		}
		logging.SetLevel(level)
	},
}

var (
	checkCRC         bool
	logLevel         string
	compressionLevel int
)

func init() {
	flags := RootCommand.PersistentFlags()
	flags.BoolVar(&checkCRC, "crc", config.Config.CheckCRC, "verify chunk CRC-32 values while decoding")
	flags.StringVar(&logLevel, "log-level", config.Config.LogLevel.String(), "trace, debug, info, warn or error")
	flags.IntVar(&compressionLevel, "level", config.Config.CompressionLevel, "IDAT compression: 0 default, -1 none, -2 fastest, -3 smallest, 1-9 zlib level")
}

func pngOptions() png.Options {
	return png.Options{
		CheckCRC:    checkCRC,
		Compression: compression.Level(compressionLevel),
	}
}

// exitOnError logs err and terminates the process.
func exitOnError(err error, msg string) {
	if err == nil {
		return
	}
	logging.Error().Err(err).Msg(msg)
	os.Exit(1)
}
