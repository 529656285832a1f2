package ingestion

import (
	"fmt"

	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// timestampColumns names the columns whose values must parse as
// timestamps for the file to be considered healthy.
var timestampColumns = map[string][]string{
	"labor":  {"In Date", "Out Date"},
	"orders": {"Opened"},
}

// measureQuality computes the non-fatal L2 metrics for the required
// files. The report score is the weakest rate observed anywhere.
func (s *Stage) measureQuality(pc *pipeline.Context) domain.QualityReport {
	report := domain.QualityReport{Score: 1.0}

	for _, logical := range requiredFiles {
		table := pc.Table(logical)
		if table == nil {
			continue
		}
		fq := measureFile(logical, table)
		report.Files = append(report.Files, fq)
		if fq.Score < report.Score {
			report.Score = fq.Score
		}
		if fq.Score < qualityWarnThreshold {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("file %q quality %.2f below %.2f", logical, fq.Score, qualityWarnThreshold))
		}
	}
	return report
}

func measureFile(logical string, table *datasource.Table) domain.FileQuality {
	fq := domain.FileQuality{
		LogicalName:        logical,
		RowCount:           table.Len(),
		NonNullRates:       make(map[string]float64),
		TimestampParseRate: 1.0,
		Score:              1.0,
	}
	if table.Len() == 0 {
		fq.Score = 0
		return fq
	}

	for _, name := range requiredColumns[logical] {
		col, ok := table.ColumnIndex(name)
		if !ok {
			continue
		}
		filled := 0
		for i := 0; i < table.Len(); i++ {
			if table.Cell(i, col) != "" {
				filled++
			}
		}
		rate := float64(filled) / float64(table.Len())
		fq.NonNullRates[name] = rate
		if rate < fq.Score {
			fq.Score = rate
		}
	}

	if tsCols := timestampColumns[logical]; len(tsCols) > 0 {
		checked, parsed := 0, 0
		for _, name := range tsCols {
			col, ok := table.ColumnIndex(name)
			if !ok {
				continue
			}
			for i := 0; i < table.Len(); i++ {
				cell := table.Cell(i, col)
				if cell == "" {
					continue
				}
				checked++
				if _, err := timeutil.ParseTimestamp(cell); err == nil {
					parsed++
				}
			}
		}
		if checked > 0 {
			fq.TimestampParseRate = float64(parsed) / float64(checked)
			if fq.TimestampParseRate < fq.Score {
				fq.Score = fq.TimestampParseRate
			}
		}
	}
	return fq
}
