package document

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/dstrand/maturity-agent/internal/types"
)

// WriteChartsPage renders the report's visual data to an interactive HTML
// page next to the document. Charts are a companion artifact; any failure
// here is reported but never fails the stage.
func WriteChartsPage(report *types.GeneratedReport, path string) error {
	page := components.NewPage()
	page.PageTitle = report.Dimension + " Maturity Charts"

	added := 0
	if chart := barChart("Average Score by Category", "Average (0-10)", report.Visuals.CategoryScores); chart != nil {
		page.AddCharts(chart)
		added++
	}
	if chart := barChart("Framework Maturity Scores", "Score (1-5)", report.Visuals.FrameworkScores); chart != nil {
		page.AddCharts(chart)
		added++
	}
	if chart := distributionChart(report.Visuals.ScoreDistribution); chart != nil {
		page.AddCharts(chart)
		added++
	}
	if added == 0 {
		return fmt.Errorf("no visual data to chart")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating charts page: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering charts page: %w", err)
	}
	return nil
}

// barChart builds one labeled bar chart from a score map, keys sorted.
// Returns nil when the map is empty.
func barChart(title, seriesName string, values map[string]float64) *charts.Bar {
	if len(values) == 0 {
		return nil
	}

	labels := types.SortedKeys(values)
	data := make([]opts.BarData, 0, len(labels))
	for _, label := range labels {
		data = append(data, opts.BarData{Value: values[label]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))
	bar.SetXAxis(labels).AddSeries(seriesName, data)
	return bar
}

// distributionChart builds the score-band histogram.
func distributionChart(distribution map[string]int) *charts.Bar {
	if len(distribution) == 0 {
		return nil
	}

	buckets := types.SortedKeys(distribution)
	data := make([]opts.BarData, 0, len(buckets))
	for _, bucket := range buckets {
		data = append(data, opts.BarData{Value: distribution[bucket]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Score Distribution"}))
	bar.SetXAxis(buckets).AddSeries("Questions", data)
	return bar
}
