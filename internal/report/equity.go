// Package report renders analytics output as self-contained HTML charts.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"tradetrack/internal/journal"
)

const (
	bgColor       = "#0b1220"
	textColor     = "#e5e9f0"
	mutedColor    = "#8b93a7"
	equityColor   = "#38bdf8"
	dailyPnLColor = "#c084fc"

	chartWidth  = "1200px"
	chartHeight = "560px"
)

// RenderEquityCurve writes the equity curve as an HTML page with the
// cumulative line and the per-day P&L overlaid.
func RenderEquityCurve(w io.Writer, title string, points []journal.EquityPoint) error {
	if title == "" {
		title = "Equity Curve"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           chartWidth,
			Height:          chartHeight,
			BackgroundColor: bgColor,
			PageTitle:       title,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      title,
			Subtitle:   fmt.Sprintf("%d trading days", len(points)),
			Left:       "left",
			Top:        "10",
			TitleStyle: &opts.TextStyle{Color: textColor, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{
				Color: mutedColor,
			},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: textColor}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: mutedColor},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: mutedColor},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: mutedColor, Opacity: opts.Float(0.2)}},
		}),
	)

	xAxis := make([]string, len(points))
	equity := make([]opts.LineData, len(points))
	daily := make([]opts.LineData, len(points))
	for i, p := range points {
		xAxis[i] = p.Date
		equity[i] = opts.LineData{Value: p.Equity}
		daily[i] = opts.LineData{Value: p.PnL}
	}

	line.SetXAxis(xAxis)
	line.AddSeries("Equity", equity,
		charts.WithLineStyleOpts(opts.LineStyle{Color: equityColor, Width: 2}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Smooth: opts.Bool(true)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: equityColor, Opacity: opts.Float(0.12)}),
	)
	line.AddSeries("Daily P&L", daily,
		charts.WithLineStyleOpts(opts.LineStyle{Color: dailyPnLColor, Width: 1}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)

	return line.Render(w)
}
