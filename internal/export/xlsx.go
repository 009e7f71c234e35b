package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/danfe-extractor/constants"
	"github.com/joseph-ayodele/danfe-extractor/internal/results"
)

// OutcomesSheet lists how every job ended for every document.
const OutcomesSheet = "outcomes"

var outcomeHeaders = []string{"file", "job", "status", "resolved", "total", "passes", "failure", "dump"}

// BuildWorkbook returns a workbook with one sheet per job, in job order, plus the
// outcomes sheet. Absent values are left as empty cells.
func BuildWorkbook(docs []results.Document) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, job := range constants.Jobs {
		sheet := string(job)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := writeRow(f, sheet, 1, toAny(results.Columns(job))); err != nil {
			return nil, err
		}
		for r, d := range docs {
			if err := writeRow(f, sheet, r+2, d.Row(job)); err != nil {
				return nil, err
			}
		}
		_ = f.SetColWidth(sheet, "A", "A", 28)
		_ = f.SetColWidth(sheet, "B", "C", 48)
	}

	if _, err := f.NewSheet(OutcomesSheet); err != nil {
		return nil, err
	}
	if err := writeRow(f, OutcomesSheet, 1, toAny(outcomeHeaders)); err != nil {
		return nil, err
	}
	row := 2
	for _, d := range docs {
		for _, job := range constants.Jobs {
			o, ok := d.Outcomes[job]
			if !ok {
				continue
			}
			vals := []any{d.File, string(job), string(o.Status), o.Resolved, o.Total, o.Passes, o.Failure, o.Dump}
			if err := writeRow(f, OutcomesSheet, row, vals); err != nil {
				return nil, err
			}
			row++
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook builds the workbook and saves it to path.
func WriteWorkbook(path string, docs []results.Document) error {
	f, err := BuildWorkbook(docs)
	if err != nil {
		return fmt.Errorf("build xlsx: %w", err)
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) error {
	for col, v := range vals {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
