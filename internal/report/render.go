package report

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/schema"
)

// Render печатает человекочитаемый отчет о запуске. Формат информационный.
func Render(w io.Writer, run *models.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := &printer{w: tw}

	p.printf("--- TRAFFIC VIOLATION SUMMARY REPORT ---\n\n")
	p.printf("Run:\t%s\n", run.ID)
	p.printf("Input:\t%s\n", run.InputPath)
	p.printf("Output:\t%s\n", run.OutputPath)
	p.printf("Status:\t%s\n", run.Status)
	if run.Error != "" {
		p.printf("Error:\t%s\n", run.Error)
	}

	cs := run.CleanStats
	p.printf("\nCleaning:\n")
	p.printf("  rows read\t%d\n", cs.Input)
	p.printf("  vehicle_type defaulted\t%d\n", cs.VehicleTypeDefaulted)
	p.printf("  dropped (missing violation_id)\t%d\n", cs.DroppedMissingID)
	p.printf("  dropped (violation_type not allowed)\t%d\n", cs.DroppedDisallowedType)
	p.printf("  timestamps nulled\t%d\n", cs.TimestampsNulled)

	es := run.EnrichStats
	p.printf("\nLocation parsing:\n")
	p.printf("  coordinates\t%d\n", es.Coordinates)
	p.printf("  intersection codes\t%d\n", es.IntersectionCodes)
	p.printf("  malformed coordinates\t%d\n", es.MalformedCoordinates)

	if rep := run.Report; rep != nil {
		p.printf("\nTotal rows after cleaning:\t%d\n", rep.TotalCount)

		p.printf("\nMissing/Null values per column:\n")
		for _, name := range schema.Names() {
			p.printf("  %s\t%d\n", name, rep.NullCounts[name])
		}

		for _, field := range []string{schema.ViolationType, schema.VehicleType} {
			p.printf("\n%s distribution:\n", field)
			for _, e := range sortedCounts(rep.Distribution(field)) {
				p.printf("  %s\t%d\n", e.value, e.count)
			}
		}

		p.printf("\nRows with latitude populated:\t%d\n", rep.GeoPopulatedCount)
		p.printf("Rows with longitude populated:\t%d\n", rep.TotalCount-rep.NullCounts[schema.Longitude])

		if s := rep.Severity; s.Count > 0 {
			p.printf("\nSeverity:\tmean %.2f, std dev %.2f, min %d, max %d (n=%d)\n", s.Mean, s.StdDev, s.Min, s.Max, s.Count)
		}
	}

	if p.err != nil {
		return fmt.Errorf("report: render: %w", p.err)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

type valueCount struct {
	value string
	count int
}

// sortedCounts упорядочивает по убыванию частоты, при равенстве - по значению
func sortedCounts(dist map[string]int) []valueCount {
	out := make([]valueCount, 0, len(dist))
	for _, k := range slices.Sorted(maps.Keys(dist)) {
		out = append(out, valueCount{value: k, count: dist[k]})
	}
	slices.SortStableFunc(out, func(a, b valueCount) int {
		return cmp.Compare(b.count, a.count)
	})
	return out
}
