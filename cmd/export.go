package cmd

import (
	"fmt"
	"log/slog"

	"github.com/cinememories/cinememories/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export gallery metadata to a Parquet file",
		Long: `Writes one row per photo with its name, category, narration, rotation
and filter settings. Image bytes are not exported.`,
		Example: `  cinememories export --out photos.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			photos := a.store.List()
			if err := export.WriteFile(out, photos); err != nil {
				return err
			}
			slog.Info("Exported photos", "count", len(photos), "path", out)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d photo(s) to %s\n", len(photos), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "photos.parquet", "Output Parquet file")

	return cmd
}
