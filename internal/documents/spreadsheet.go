// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package documents

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet   = "Sheet1"
	maxColumnWidth = 50
)

// Table is a query result prepared for export. Every row has one value per column.
type Table struct {
	Sheet   string
	Columns []string
	Rows    [][]string
}

// SpreadsheetOptions is the configuration of the spreadsheet writer.
type SpreadsheetOptions struct {
	Timeout time.Duration
}

// SpreadsheetOptionsFromViper reads SpreadsheetOptions from viper.
//
// `documents.timeout` is the upper bound of a single export.
func SpreadsheetOptionsFromViper() SpreadsheetOptions {
	return SpreadsheetOptions{
		Timeout: viper.GetDuration("documents.timeout"),
	}
}

// Spreadsheet writes tables as xlsx workbooks with a single sheet.
type Spreadsheet struct {
	opts SpreadsheetOptions
}

// NewSpreadsheet creates a new Spreadsheet writer.
func NewSpreadsheet(opts SpreadsheetOptions) *Spreadsheet {
	return &Spreadsheet{opts: opts}
}

// Write renders table into a workbook. The first row holds the column labels and every column is
// as wide as its longest value plus two, but at most 50.
func (s *Spreadsheet) Write(ctx context.Context, table Table) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	return withTimeout(ctx, func() ([]byte, error) {
		return writeXlsx(table)
	})
}

func writeXlsx(table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheet
	if table.Sheet != "" && table.Sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, table.Sheet); err != nil {
			return nil, err
		}

		sheet = table.Sheet
	}

	widths := make([]int, len(table.Columns))

	if err := writeRow(f, sheet, 1, table.Columns, widths); err != nil {
		return nil, err
	}

	for i, row := range table.Rows {
		if err := writeRow(f, sheet, i+2, row, widths); err != nil {
			return nil, err
		}
	}

	for i, width := range widths {
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}

		if err := f.SetColWidth(sheet, column, column, float64(min(width+2, maxColumnWidth))); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string, widths []int) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, value := range values {
		cells[i] = value

		if i < len(widths) {
			widths[i] = max(widths[i], utf8.RuneCountInString(value))
		}
	}

	return f.SetSheetRow(sheet, cell, &cells)
}
