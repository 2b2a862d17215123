package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cinememories/cinememories/internal/media"
	"github.com/cinememories/cinememories/internal/models"
	"github.com/spf13/cobra"
)

func newCategorizeCmd(configPath *string) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "categorize [dir]",
		Short: "Categorize gallery photos with Gemini",
		Long: `Runs the sequential categorization batch against the saved session.

With a directory argument, every image in it is added to the gallery first
and only those photos are categorized. Without one, uncategorized photos
are processed, or every photo with --all.`,
		Example: `  # Import a folder and label it
  cinememories categorize ./holiday

  # Relabel everything already in the gallery
  cinememories categorize --all`,
		Args: cobra.MaximumNArgs(1),
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

			var ids []string
			if len(args) == 1 {
				photos, err := readImageDir(args[0], cfg.MaxUploadBytes())
				if err != nil {
					return err
				}
				for _, p := range a.store.Add(photos...) {
					ids = append(ids, p.ID)
				}
				slog.Info("Imported photos", "dir", args[0], "count", len(ids))
			} else {
				for _, p := range a.store.List() {
					if all || p.Category == models.CategoryUncategorized {
						ids = append(ids, p.ID)
					}
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to categorize")
				return nil
			}

			report := a.categorizer.Run(cmd.Context(), ids)

			rows := make([][]string, 0, len(report.Items))
			for _, item := range report.Items {
				applied := ""
				if item.Applied {
					applied = "yes"
				}
				rows = append(rows, []string{item.Name, string(item.Category), string(item.Outcome), applied, truncate(item.Error, 50)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Photo", "Category", "Outcome", "Applied", "Error"}, rows, nil))
			fmt.Fprintf(out, "%d of %d categorized in %s\n", report.Succeeded(), len(ids), report.Duration.Round(time.Millisecond))
			if report.Canceled {
				return cmd.Context().Err()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Categorize every photo, not just uncategorized ones")

	return cmd
}

// readImageDir loads the images directly inside dir in name order. Files
// that are not images or exceed maxBytes are skipped.
func readImageDir(dir string, maxBytes int64) ([]models.Photo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var photos []models.Photo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		if info.Size() > maxBytes {
			slog.Warn("Skipping oversized file", "file", entry.Name(), "size", info.Size())
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		mimeType := media.Sniff(data)
		if !strings.HasPrefix(mimeType, "image/") {
			slog.Debug("Skipping non-image file", "file", entry.Name(), "mime", mimeType)
			continue
		}
		photos = append(photos, models.Photo{
			Name: models.NameFromFilename(entry.Name()),
			URL:  media.DataURL(mimeType, data),
		})
	}
	return photos, nil
}
