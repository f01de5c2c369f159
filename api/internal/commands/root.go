// Package commands holds the animate-cli command tree.
package commands

import (
	"github.com/spf13/cobra"

	"animate-prompt/api/internal/logger"
	"animate-prompt/api/internal/prompt"
)

var (
	detailLevel  int
	style3D      bool
	styleNatural bool
	styleAnime   bool
	styleGreen   bool
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "animate-cli",
	Short: "Write video-generation prompts for still images",
	Long: `animate-cli asks a vision model to describe how a still image should move,
and prints a prompt that starts with "animate this image".`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// stdout carries the prompt only
		logger.Logger.SetOutput(cmd.ErrOrStderr())
		if logLevel == "" {
			logLevel = "warn"
		}
		logger.SetLevel(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default warn)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// addPromptFlags registers the detail and style flags shared by analyze and instruction.
func addPromptFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&detailLevel, "detail", int(prompt.DefaultDetail), "Detail level 1-5")
	cmd.Flags().BoolVar(&style3D, "3d", false, "Realistic 3D style")
	cmd.Flags().BoolVar(&styleNatural, "natural", false, "Natural effects (wind, water, light)")
	cmd.Flags().BoolVar(&styleAnime, "anime", false, "Anime style")
	cmd.Flags().BoolVar(&styleGreen, "green-screen", false, "Green screen background")
}

func styleFromFlags() prompt.StyleFlags {
	return prompt.StyleFlags{
		Realistic3D:    style3D,
		NaturalEffects: styleNatural,
		Anime:          styleAnime,
		GreenScreen:    styleGreen,
	}
}
