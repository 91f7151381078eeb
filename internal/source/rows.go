package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// emptyHeader names columns whose header cell is blank.
const emptyHeader = "__EMPTY"

func readCSVRows(ctx context.Context, r io.Reader) ([][]string, error) {
	cr := csv.NewReader(WrapForStreaming(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for i := 0; ; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, ErrFileTooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("read csv row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readWorkbookRows(ctx context.Context, r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheet
		}
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSheet, sheet)
	}

	it, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer it.Close()

	var rows [][]string
	for i := 0; it.Next(); i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cols, err := it.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q row %d: %w", sheet, i+1, err)
		}
		if err := markBoolCells(f, sheet, i+1, cols); err != nil {
			return nil, err
		}
		rows = append(rows, cols)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// markBoolCells rewrites raw boolean cells ("1"/"0") as TRUE/FALSE so Infer types
// them as Bool instead of Number.
func markBoolCells(f *excelize.File, sheet string, row int, cols []string) error {
	for i, v := range cols {
		if v != "0" && v != "1" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("read sheet %q row %d: %w", sheet, row, err)
		}
		typ, err := f.GetCellType(sheet, cell)
		if err != nil {
			return fmt.Errorf("read sheet %q cell %s: %w", sheet, cell, err)
		}
		if typ == excelize.CellTypeBool {
			cols[i] = strings.ToUpper(strconv.FormatBool(v == "1"))
		}
	}
	return nil
}

// buildRecords turns raw rows into records. The first row is the header; the sheet
// is as wide as its widest row. Blank rows are skipped.
func buildRecords(rows [][]string) record.Set {
	if len(rows) == 0 {
		return record.Set{}
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	header := HeaderNames(rows[0], width)

	out := make(record.Set, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		var r record.Record
		for i, col := range header {
			cell := ""
			if i < len(row) {
				cell = CleanCell(row[i])
			}
			r.Set(col, record.Infer(cell))
		}
		out = append(out, r)
	}
	return out
}

// HeaderNames cleans a header row padded to width columns. Blank names become
// __EMPTY, __EMPTY_1, ...; a repeated name gets a _1, _2, ... suffix.
func HeaderNames(cells []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	counts := make(map[string]int, width)

	for i := range names {
		base := ""
		if i < len(cells) {
			base = strings.TrimSpace(CleanCell(cells[i]))
		}
		if base == "" {
			base = emptyHeader
		}

		name := base
		for used[name] {
			counts[base]++
			name = base + "_" + strconv.Itoa(counts[base])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// CleanCell strips spreadsheet export artifacts: the ="..." text wrapper and a
// leading '=' on literal values.
func CleanCell(s string) string {
	t := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(t, `="`) && strings.HasSuffix(t, `"`) && len(t) >= 3:
		return t[2 : len(t)-1]
	case strings.HasPrefix(t, "=") && len(t) > 1 && !strings.ContainsAny(t[1:], "()+*/&<>:!"):
		return t[1:]
	default:
		return s
	}
}
