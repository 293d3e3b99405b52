// Package export writes processed statements to XLSX workbooks and CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/processor"
)

const (
	dateLayout   = "2006-01-02"
	periodHeader = "Period"
)

// Excel caps sheet names at 31 characters.
const maxSheetName = 31

var sheetNames = map[processor.Kind]string{
	processor.BalanceSheet:    "Balance Sheet",
	processor.IncomeStatement: "Income Statement",
	processor.CashFlow:        "Cash Flow",
}

// SheetName returns the worksheet name used for a statement kind.
func SheetName(kind processor.Kind) string {
	if n, ok := sheetNames[kind]; ok {
		return n
	}
	n := string(kind)
	if len(n) > maxSheetName {
		n = n[:maxSheetName]
	}
	return n
}

// FileName builds the workbook path for a company.
func FileName(dir, cik, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_financial_statements.%s", cik, ext))
}

// StatementFileName builds the path for a single-statement file such as a CSV.
func StatementFileName(dir, cik string, kind processor.Kind, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", cik, kind, ext))
}

// WriteWorkbook saves statements to path, one sheet each, in the standard
// kind order. Nil statements are skipped.
func WriteWorkbook(path string, statements map[processor.Kind]*processor.Statement) error {
	var ordered []*processor.Statement
	for _, k := range processor.Kinds() {
		if st := statements[k]; st != nil {
			ordered = append(ordered, st)
		}
	}
	if len(ordered) == 0 {
		return fmt.Errorf("%w: no statements to export", errs.ErrInvalidArgument)
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, st := range ordered {
		name := SheetName(st.Kind)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, st, header, number); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, st *processor.Statement, header, number int) error {
	cols := st.Columns()
	head := make([]interface{}, 0, len(cols)+1)
	head = append(head, periodHeader)
	for _, c := range cols {
		head = append(head, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range st.Periods() {
		row := make([]interface{}, 0, len(cols)+1)
		row = append(row, p.Format(dateLayout))
		for _, c := range cols {
			if v, ok := st.Value(c, i); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(cols) + 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
		return err
	}
	if st.Len() > 0 && len(cols) > 0 {
		if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("%s%d", last, st.Len()+1), number); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		return err
	}
	if len(cols) > 0 {
		if err := f.SetColWidth(sheet, "B", last, 22); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes one statement as CSV: a Period column then one column per
// line item. Empty cells stay blank.
func WriteCSV(w io.Writer, st *processor.Statement) error {
	if st == nil {
		return fmt.Errorf("%w: nil statement", errs.ErrInvalidArgument)
	}
	cw := csv.NewWriter(w)
	cols := st.Columns()

	if err := cw.Write(append([]string{periodHeader}, cols...)); err != nil {
		return err
	}
	for i, p := range st.Periods() {
		rec := make([]string, 0, len(cols)+1)
		rec = append(rec, p.Format(dateLayout))
		for _, c := range cols {
			if v, ok := st.Value(c, i); ok {
				rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				rec = append(rec, "")
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
