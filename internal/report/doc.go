// Package report renders recorded simulation runs: a static trajectory plot
// (PNG, gonum/plot) and an interactive speed profile (HTML, go-echarts), plus
// per-vehicle summary statistics.
//
// Inputs are the rows read back from internal/db; nothing here touches the
// live simulator.
package report
