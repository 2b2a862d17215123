package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cinememories",
		Short: "Photo gallery backend with Gemini-powered categorization, narration and editing",
		Long: `CineMemories serves a photo gallery and slideshow backend.

Photos are categorized, narrated, stylized and retouched through Gemini
models, and session state is persisted between runs.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cinememories.yaml", "Path to YAML config file")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newCategorizeCmd(&configPath))
	cmd.AddCommand(newPhotosCmd(&configPath))
	cmd.AddCommand(newExportCmd(&configPath))

	return cmd
}
