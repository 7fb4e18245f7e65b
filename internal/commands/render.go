package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marketViewport/internal/chart"
	"marketViewport/internal/config"
	"marketViewport/internal/render"
)

func newRenderCmd(vf *viewFlags, cfg config.Config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the visible window to a PNG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := vf.request()
			if err != nil {
				return err
			}
			svc, err := vf.service(cfg)
			if err != nil {
				return err
			}
			img, f, err := svc.Render(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, img, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", chart.Title(req), chart.Subtitle(f))
			fmt.Fprintf(cmd.OutOrStdout(), "legend: %v\nwrote %s (%d bytes)\n", render.LegendLabels(f.Result, f.Descriptors), out, len(img))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "chart.png", "Output PNG path")
	return cmd
}
