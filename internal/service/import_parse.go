package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Bulk-import column headers, shared by the CSV parser, the XLSX parser and
// the downloadable XLSX template.
var importHeader = []string{"name", "sensor_type", "latitude", "longitude", "area"}

// ParseCSV reads bulk-import records from a headered CSV stream. Column
// order is free; header matching is case-insensitive.
func ParseCSV(r io.Reader) ([]RawNode, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, Validationf("CSV payload is empty or unreadable")
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []RawNode
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, Validationf("CSV line %d is malformed", line)
		}
		rec, err := rowToRecord(row, index, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseXLSX reads bulk-import records from the first sheet of an XLSX file.
func ParseXLSX(r io.Reader) ([]RawNode, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, Validationf("XLSX payload is unreadable")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, Validationf("XLSX payload has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, Validationf("XLSX payload is empty")
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}
	var records []RawNode
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		rec, err := rowToRecord(row, index, i+2)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ImportTemplateXLSX builds the empty spreadsheet vendors fill in.
func ImportTemplateXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Nodes"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(idx)

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	for col, name := range importHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize template: %w", err)
	}
	return buf.Bytes(), nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := map[string]int{}
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range importHeader {
		if _, ok := index[required]; !ok {
			return nil, Validationf("missing required column %q", required)
		}
	}
	return index, nil
}

func rowToRecord(row []string, index map[string]int, line int) (RawNode, error) {
	cell := func(name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	lat, err := strconv.ParseFloat(cell("latitude"), 64)
	if err != nil {
		return RawNode{}, Validationf("line %d: latitude is not a number", line)
	}
	long, err := strconv.ParseFloat(cell("longitude"), 64)
	if err != nil {
		return RawNode{}, Validationf("line %d: longitude is not a number", line)
	}
	return RawNode{
		Name:       cell("name"),
		SensorType: cell("sensor_type"),
		Latitude:   lat,
		Longitude:  long,
		Area:       cell("area"),
	}, nil
}
