package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"budgetwatch/internal/core"
)

// chart palette, cycled per category
var seriesColors = []chart.Style{
	{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
	{StrokeColor: chart.ColorRed, StrokeWidth: 2},
	{StrokeColor: chart.ColorGreen, StrokeWidth: 2},
	{StrokeColor: chart.ColorOrange, StrokeWidth: 2},
	{StrokeColor: chart.ColorCyan, StrokeWidth: 2},
	{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 2},
}

// RenderTrendChart draws cumulative month-to-date spend per category over
// the history window as a PNG. Returns nil bytes when no category has
// enough points to draw a line.
func RenderTrendChart(history map[string][]core.DailySnapshot) ([]byte, error) {
	categories := make([]string, 0, len(history))
	for category, snapshots := range history {
		if len(snapshots) >= 2 {
			categories = append(categories, category)
		}
	}
	if len(categories) == 0 {
		return nil, nil
	}
	sort.Strings(categories)

	series := make([]chart.Series, 0, len(categories))
	for i, category := range categories {
		snapshots := history[category]
		xs := make([]time.Time, len(snapshots))
		ys := make([]float64, len(snapshots))
		for j, s := range snapshots {
			xs[j] = s.Date
			ys[j] = s.Spent.Float()
		}

		series = append(series, chart.TimeSeries{
			Name:    category,
			XValues: xs,
			YValues: ys,
			Style:   seriesColors[i%len(seriesColors)],
		})
	}

	graph := chart.Chart{
		Width:  900,
		Height: 450,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 40},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}

	return buf.Bytes(), nil
}
