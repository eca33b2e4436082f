package exchange

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/muurk/screwctl/internal/preset"
)

// SheetName is the worksheet written on export.
const SheetName = "Screws"

var zipMagic = []byte("PK\x03\x04")

type xlsxFormat struct{}

func (xlsxFormat) Name() string      { return "xlsx" }
func (xlsxFormat) Extension() string { return "xlsx" }

func (xlsxFormat) Sniff(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// Encode writes a single-sheet workbook. Torque and speed are stored as
// numeric cells.
func (xlsxFormat) Encode(presets []preset.Preset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(preset.Header))
	for i, h := range preset.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, p := range presets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{p.Name, p.Torque, p.Speed}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads the first worksheet.
func (xlsxFormat) Decode(data []byte) ([]preset.Candidate, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}

	// Raw values keep full float precision; the General format would
	// round to 15 significant digits.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return candidatesFromRows(rows)
}
