// Package spreadsheet lee y escribe libros .xlsx con excelize.
package spreadsheet

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-pos/internal/application/portation"
	"github.com/jhoicas/inventario-pos/internal/domain"
)

var _ portation.Spreadsheet = (*Excel)(nil)

// Excel implementa portation.Spreadsheet.
type Excel struct{}

// New construye el adaptador.
func New() *Excel { return &Excel{} }

// ReadTable lee la primera hoja. Los valores salen crudos (sin formato de celda):
// las fechas llegan como número de serie y los montos sin separadores. Cada fila
// indica qué celdas son numéricas para que los montos no se reinterpreten.
func (Excel) ReadTable(r io.Reader) (*portation.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Invalid(domain.ErrInvalidInput, "archivo", "no es un libro .xlsx válido: "+err.Error())
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Invalid(domain.ErrInvalidInput, "archivo", "el libro no tiene hojas")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %q: %w", sheets[0], err)
	}
	t := &portation.Table{}
	if len(rows) == 0 {
		return t, nil
	}
	t.Header = rows[0]
	for i, cells := range rows[1:] {
		numeric, err := numericCells(f, sheets[0], i+2, cells)
		if err != nil {
			return nil, fmt.Errorf("leer hoja %q: %w", sheets[0], err)
		}
		t.Rows = append(t.Rows, portation.Row{Number: i + 2, Cells: cells, Numeric: numeric})
	}
	return t, nil
}

// numericCells marca las celdas guardadas como número. Excel omite el tipo en las
// celdas numéricas, así que un tipo vacío con valor también cuenta como número.
func numericCells(f *excelize.File, sheet string, rowNum int, cells []string) ([]bool, error) {
	numeric := make([]bool, len(cells))
	for col, v := range cells {
		if v == "" {
			continue
		}
		name, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return nil, err
		}
		typ, err := f.GetCellType(sheet, name)
		if err != nil {
			return nil, err
		}
		numeric[col] = typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset
	}
	return numeric, nil
}

// WriteWorkbook escribe una hoja por elemento de sheets, con el encabezado en negrita.
func (Excel) WriteWorkbook(w io.Writer, sheets []portation.Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	first := f.GetSheetName(0)
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(first, sh.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return err
		}
		if err := writeSheet(f, sh, bold); err != nil {
			return fmt.Errorf("hoja %q: %w", sh.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sh portation.Sheet, headerStyle int) error {
	sw, err := f.NewStreamWriter(sh.Name)
	if err != nil {
		return err
	}
	if len(sh.Header) > 0 {
		if err := sw.SetColWidth(1, len(sh.Header), 18); err != nil {
			return err
		}
	}
	header := make([]any, len(sh.Header))
	for i, h := range sh.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return err
	}
	for i, row := range sh.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// cellValue los decimales se escriben como número y las fechas como texto.
func cellValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		f, _ := x.Float64()
		return f
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
		f, _ := x.Float64()
		return f
	case time.Time:
		return x.Local().Format("2006-01-02 15:04:05")
	case nil:
		return ""
	default:
		return v
	}
}
