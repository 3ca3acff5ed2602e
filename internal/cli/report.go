package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shenikar/disaster_resource_system/internal/models"
)

func newStatsCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show resource statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := current.actorFlag(ctx, as)
			if err != nil {
				return err
			}

			stats, err := current.resources.Stats(ctx, actor)
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			renderStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "id of the requesting admin (required)")

	return cmd
}

func newExportCmd() *cobra.Command {
	var as, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export resources as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := current.actorFlag(ctx, as)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := current.resources.Export(ctx, actor, w); err != nil {
				return fmt.Errorf("failed to export resources: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "id of the requesting admin (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to file instead of stdout")

	return cmd
}

// renderStats выводит статистику в виде двух таблиц: итоги и разбивка по типам и статусам
func renderStats(w io.Writer, stats *models.ResourceStats) {
	totals := tablewriter.NewWriter(w)
	totals.SetBorder(false)
	totals.SetHeader([]string{"Metric", "Value"})
	totals.AppendBulk([][]string{
		{"Resources", strconv.Itoa(stats.TotalResources)},
		{"Verified", strconv.Itoa(stats.VerifiedResources)},
		{"Capacity", strconv.Itoa(stats.TotalCapacity)},
		{"Available", strconv.Itoa(stats.AvailableCapacity)},
	})
	totals.Render()

	fmt.Fprintln(w)

	breakdown := tablewriter.NewWriter(w)
	breakdown.SetBorder(false)
	breakdown.SetHeader([]string{"Group", "Value", "Count"})
	for _, t := range models.ResourceTypes {
		breakdown.Append([]string{"type", string(t), strconv.Itoa(stats.ByType[t])})
	}
	for _, s := range models.ResourceStatuses {
		breakdown.Append([]string{"status", string(s), strconv.Itoa(stats.ByStatus[s])})
	}
	breakdown.Render()
}
