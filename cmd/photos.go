package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPhotosCmd(configPath *string) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "photos",
		Short: "List the photos in the saved session",
		Example: `  # Show every photo in gallery order
  cinememories photos

  # Only landscapes
  cinememories photos --category Landscapes`,
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

			rows := [][]string{}
			for i, p := range a.store.List() {
				if category != "" && string(p.Category) != category {
					continue
				}
				stylized := ""
				if p.Stylized() {
					stylized = "yes"
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					p.ID,
					p.Name,
					string(p.Category),
					truncate(p.Narration, 40),
					stylized,
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No photos")
				return nil
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"#", "ID", "Name", "Category", "Narration", "Stylized"},
				rows,
				[]columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list photos in this category")

	return cmd
}
