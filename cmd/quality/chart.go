package main

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// renderChart writes a line chart of the mean PSNR per fill ratio, one series
// per channel set and mode.
func renderChart(results []testResult, outputPath string) error {
	type key struct {
		series string
		fill   float64
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	fillSet := make(map[float64]struct{})
	seriesSet := make(map[string]struct{})
	for _, r := range results {
		if !r.Success || math.IsInf(r.Report.PSNR, 1) {
			continue
		}
		k := key{series: fmt.Sprintf("%s/%s", r.Channels, r.Mode), fill: r.Fill}
		sums[k] += r.Report.PSNR
		counts[k]++
		fillSet[r.Fill] = struct{}{}
		seriesSet[k.series] = struct{}{}
	}

	var fills []float64
	for f := range fillSet {
		fills = append(fills, f)
	}
	sort.Float64s(fills)
	var series []string
	for s := range seriesSet {
		series = append(series, s)
	}
	sort.Strings(series)

	var xAxisData []string
	for _, f := range fills {
		xAxisData = append(xAxisData, fmt.Sprintf("%.0f%%", f*100))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Image Quality (PSNR) by Fill Ratio",
			Subtitle: "Mean over all covers",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Fill ratio",
			Type: "category",
			Data: xAxisData,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "PSNR (dB)",
			Type: "value",
			AxisLabel: &opts.AxisLabel{
				Formatter: "{value}",
			},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)
	line.SetXAxis(xAxisData)

	for _, s := range series {
		var data []opts.LineData
		for _, f := range fills {
			k := key{series: s, fill: f}
			if counts[k] == 0 {
				data = append(data, opts.LineData{Value: "-"})
				continue
			}
			mean := sums[k] / float64(counts[k])
			data = append(data, opts.LineData{
				Value: mean,
				Name:  fmt.Sprintf("%s: PSNR=%.2fdB (n=%d)", s, mean, counts[k]),
			})
		}
		line.AddSeries(s, data).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{
					Smooth: opts.Bool(true),
				}),
			)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return line.Render(f)
}
