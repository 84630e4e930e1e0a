package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pyq-analyzer/internal/core/pipeline"
)

const (
	groupsSheet  = "Questions"
	summarySheet = "Summary"
)

// Service renders a completed run into shareable report formats.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultXLSX returns an XLSX workbook (as bytes) with one row per group, in
// frequency order, plus a summary sheet with run totals and document statuses.
func (s *Service) ResultXLSX(res pipeline.RunResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", groupsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(groupsSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Rank",
		"Question",
		"Type",
		"Frequency",
		"Years",
		"Variants",
		"Model Answer",
	}
	if err := f.SetSheetRow(groupsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}

	for i, g := range res.Groups {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			i + 1,
			g.NormalizedQuestion,
			string(g.Type),
			g.Frequency,
			strings.Join(g.Years, ", "),
			strings.Join(g.Variants, "\n"),
			g.Answer,
		}
		if err := f.SetSheetRow(groupsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write group %q: %w", g.ID, err)
		}
	}

	_ = f.SetColWidth(groupsSheet, "A", "A", 6)  // rank
	_ = f.SetColWidth(groupsSheet, "B", "B", 60) // question
	_ = f.SetColWidth(groupsSheet, "C", "D", 12) // type, frequency
	_ = f.SetColWidth(groupsSheet, "E", "E", 24) // years
	_ = f.SetColWidth(groupsSheet, "F", "F", 60) // variants
	_ = f.SetColWidth(groupsSheet, "G", "G", 90) // answer
	_ = f.SetPanes(groupsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if err := writeSummary(f, res); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"groups", len(res.Groups),
		"documents", len(res.Statuses),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, res pipeline.RunResult) error {
	rows := [][]any{
		{"Total Papers", res.Summary.TotalPapers},
		{"Total Questions Extracted", res.Summary.TotalQuestionsExtracted},
		{"Repeated Question Groups", res.Summary.TotalRepeatedGroups},
		{},
		{"Document", "Status", "Error"},
	}
	for _, st := range res.Statuses {
		rows = append(rows, []any{st.Filename, string(st.Status), st.Error})
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 30)
	_ = f.SetColWidth(summarySheet, "B", "B", 14)
	_ = f.SetColWidth(summarySheet, "C", "C", 60)
	return nil
}

// ResultJSON returns the run result as indented JSON.
func (s *Service) ResultJSON(res pipeline.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return buf.Bytes(), nil
}
