package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sphere-panels/internal/layout"
)

func newLayoutCommand() *cobra.Command {
	var (
		rows     string
		gap      float64
		panels   int
		centered bool
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the panel regions for a row layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := parseRows(rows)
			if err != nil {
				return err
			}
			if panels == 0 {
				for _, n := range counts {
					panels += n
				}
			}
			regions, err := layout.AllocateWith(panels, counts, layout.Options{Gap: gap, Centered: centered})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PANEL\tROW\tCOL\tPHI°\tΔPHI°\tTHETA°\tΔTHETA°")
			for _, r := range regions {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
					r.Index, r.Row, r.Col, deg(r.PhiStart), deg(r.PhiLength), deg(r.ThetaStart), deg(r.ThetaLength))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&rows, "rows", "2,3,2", "panels per row, top to bottom")
	cmd.Flags().Float64Var(&gap, "gap", 0.02, "inward margin per side, radians")
	cmd.Flags().IntVar(&panels, "panels", 0, "panel count (default: sum of rows)")
	cmd.Flags().BoolVar(&centered, "centered", true, "center sector 0 on theta = 0")
	return cmd
}

func parseRows(s string) ([]int, error) {
	var rows []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("rows %q: %w", s, err)
		}
		rows = append(rows, n)
	}
	return rows, nil
}

func deg(rad float64) float64 { return rad * 180 / math.Pi }
