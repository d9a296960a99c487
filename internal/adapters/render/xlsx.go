package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/qehtml/internal/domain/format"
	"github.com/okian/qehtml/internal/domain/types"
	"github.com/okian/qehtml/pkg/metrics"
)

const maxSheetName = 31

// WriteTotalsXLSX writes one sheet per class with the overall standings.
func WriteTotalsXLSX(path string, tables []types.TotalTable) error {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(f.GetActiveSheetIndex())
	used := make(map[string]bool, len(tables))

	for i, table := range tables {
		sheet := sheetName(table.Class.Name, used)
		if i == 0 {
			if err := f.SetSheetName(first, sheet); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
		}

		for r, row := range totalsSheetRows(table) {
			axis, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
			}
			if err := f.SetSheetRow(sheet, axis, &row); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	metrics.RecordPageWritten("xlsx")
	return nil
}

func totalsSheetRows(table types.TotalTable) [][]interface{} {
	header := []interface{}{"Rank", "Name", "Registration"}
	for s := 1; s <= table.StageCount; s++ {
		header = append(header, "E"+strconv.Itoa(s))
	}
	header = append(header, "Total")

	rows := [][]interface{}{header}
	for _, tr := range table.Rows {
		rank := format.Placeholder
		if tr.Placed {
			rank = strconv.Itoa(tr.Rank)
		}
		row := []interface{}{rank, tr.FullName, tr.Registration}
		for _, cell := range tr.Stages {
			if cell.Status == "OK" {
				row = append(row, cell.Time)
			} else {
				row = append(row, cell.Status)
			}
		}
		row = append(row, tr.Total)
		rows = append(rows, row)
	}
	return rows
}

// sheetName makes a class name a valid worksheet name, unique ignoring case.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = "Class"
	}
	clean = truncateRunes(clean, maxSheetName)

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := "~" + strconv.Itoa(n)
		candidate = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
