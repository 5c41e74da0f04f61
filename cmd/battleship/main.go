package main

import (
	"fmt"
	"os"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagKeysDir string
	flagVerbose bool
	log         zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "battleship",
	Short: "Zero-knowledge battleship: proof tooling and game host",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()
		if flagVerbose {
			logger.Set(log)
		} else {
			logger.Disable()
		}
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagKeysDir, "keys-dir", "./keys", "directory holding proving and verifying keys")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging, including the prover's")
}
