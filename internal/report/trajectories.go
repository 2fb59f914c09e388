package report

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/intersim/internal/db"
)

// Default trajectory plot size.
const (
	PlotWidth  = 8 * vg.Inch
	PlotHeight = 8 * vg.Inch
)

// TrajectoryPlot draws every vehicle's recorded path in the x-y plane and
// marks each collision at the positions of both vehicles involved.
func TrajectoryPlot(title string, traj map[int][]db.FramePose, collisions []db.CollisionEvent) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	vehicles := sortedVehicles(traj)
	colors := palette(len(vehicles))
	for i, v := range vehicles {
		poses := traj[v]
		if len(poses) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(poses))
		for k, fp := range poses {
			pts[k] = plotter.XY{X: fp.X, Y: fp.Y}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", v, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("vehicle %d", v), line)
	}

	if hits := collisionPoints(traj, collisions); len(hits) > 0 {
		sc, err := plotter.NewScatter(hits)
		if err != nil {
			return nil, fmt.Errorf("collisions: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add("collision", sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// collisionPoints looks up the position of both vehicles at every
// collision tick.
func collisionPoints(traj map[int][]db.FramePose, collisions []db.CollisionEvent) plotter.XYs {
	at := func(vehicle, tick int) (plotter.XY, bool) {
		for _, fp := range traj[vehicle] {
			if fp.Tick == tick {
				return plotter.XY{X: fp.X, Y: fp.Y}, true
			}
		}
		return plotter.XY{}, false
	}
	var out plotter.XYs
	for _, c := range collisions {
		for _, v := range []int{c.VehicleA, c.VehicleB} {
			if xy, ok := at(v, c.Tick); ok {
				out = append(out, xy)
			}
		}
	}
	return out
}

// PlotTrajectories renders TrajectoryPlot to a PNG file at path.
func PlotTrajectories(path, title string, traj map[int][]db.FramePose, collisions []db.CollisionEvent) error {
	p, err := TrajectoryPlot(title, traj, collisions)
	if err != nil {
		return err
	}
	if err := p.Save(PlotWidth, PlotHeight, path); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}
	return nil
}

// WriteTrajectoryPNG renders TrajectoryPlot as PNG to w.
func WriteTrajectoryPNG(w io.Writer, title string, traj map[int][]db.FramePose, collisions []db.CollisionEvent) error {
	p, err := TrajectoryPlot(title, traj, collisions)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write trajectory plot: %w", err)
	}
	return nil
}
