package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/intersim/internal/db"
	"github.com/banshee-data/intersim/internal/units"
)

// SpeedChart builds a line chart of speed against simulation time for every
// vehicle in traj, converted to unit (see internal/units).
func SpeedChart(title string, traj map[int][]db.FramePose, unit string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("vehicles=%d", len(traj))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "t (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: fmt.Sprintf("speed (%s)", units.Label(unit)), Min: 0}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	for _, v := range sortedVehicles(traj) {
		poses := traj[v]
		data := make([]opts.LineData, len(poses))
		for k, fp := range poses {
			data[k] = opts.LineData{Value: []interface{}{fp.T, units.ConvertSpeed(fp.V, unit)}}
		}
		line.AddSeries(fmt.Sprintf("vehicle %d", v), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line
}

// RenderSpeedChart writes SpeedChart as a standalone HTML page to w.
func RenderSpeedChart(w io.Writer, title string, traj map[int][]db.FramePose, unit string) error {
	if err := SpeedChart(title, traj, unit).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
