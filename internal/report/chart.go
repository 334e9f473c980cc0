package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/schema"
)

// RenderHTML рисует HTML-страницу с графиками отчета: распределения и null-значения по колонкам
func RenderHTML(w io.Writer, run *models.Run) error {
	if run.Report == nil {
		return fmt.Errorf("report: run %s has no report", run.ID)
	}
	rep := run.Report

	page := components.NewPage()
	page.PageTitle = "Traffic Violation Summary"

	for _, field := range DistributionFields {
		counts := sortedCounts(rep.Distribution(field))
		x := make([]string, len(counts))
		y := make([]opts.BarData, len(counts))
		for i, e := range counts {
			x[i] = e.value
			y[i] = opts.BarData{Value: e.count}
		}
		page.AddCharts(newBar(field+" distribution", run, x, y))
	}

	names := schema.Names()
	nulls := make([]opts.BarData, len(names))
	for i, name := range names {
		nulls[i] = opts.BarData{Value: rep.NullCounts[name]}
	}
	page.AddCharts(newBar("null values per column", run, names, nulls))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}
	return nil
}

func newBar(title string, run *models.Run, x []string, y []opts.BarData) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("run=%s rows=%d", run.ID, run.Report.TotalCount),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("count", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
