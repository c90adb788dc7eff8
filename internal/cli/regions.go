package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/RegionLens/internal/emoji"
	"github.com/yildizm/RegionLens/internal/regions"
)

func newRegionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the known regions",
		Long: `List the regions the model is trained on, with their display names.

Display names can be changed or extended in the regions section of the config
file. The list is informational: predictions outside it are shown as-is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := GetGlobalConfig().RegionTable()
			out, err := formatRegions(table, getOutputFormat(), colorEnabled(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func formatRegions(table *regions.Table, format string, color bool) (string, error) {
	all := table.All()

	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal regions: %w", err)
		}
		return string(data) + "\n", nil

	case "markdown", "md":
		var b strings.Builder
		b.WriteString("| Region | Display Name |\n|--------|--------------|\n")
		for _, r := range all {
			fmt.Fprintf(&b, "| %s | %s |\n", r.Name, r.Display)
		}
		return b.String(), nil

	case "csv":
		var b strings.Builder
		b.WriteString("Region,Display Name\n")
		for _, r := range all {
			fmt.Fprintf(&b, "%s,%s\n", r.Name, r.Display)
		}
		return b.String(), nil

	case "text", "terminal", "":
		opts := termfmt.DefaultOptions()
		opts.Color = color
		opts.Emoji = !emoji.IsEmojiDisabled()

		items := make([]termfmt.TreeItem, 0, len(all))
		for i, r := range all {
			items = append(items, termfmt.TreeItem{
				Label: r.Name,
				Value: r.String(),
				Last:  i == len(all)-1,
			})
		}

		header := fmt.Sprintf("%s Regions (%d)\n", emoji.GetEmoji("globe"), table.Len())
		return header + termfmt.TreeViewWithOptions(items, opts) + "\n", nil

	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}
