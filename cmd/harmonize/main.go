package main

import (
	"os"

	"github.com/spf13/cobra"

	game_log "github.com/CodingFreeze/Harmonize/internal/log"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "harmonize",
	Short: "Turn freehand drawing gestures into a musical performance",
	Long: `Harmonize converts recorded drawing strokes into scheduled notes:
horizontal position picks the pitch, vertical position the velocity and
drawing speed the note length.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, error or none")
}

func newLogger() *game_log.Logger {
	return game_log.New(os.Stderr, game_log.LevelFromString(logLevel))
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
