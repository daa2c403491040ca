// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseExcel flattens a workbook into sentence-like rows so the text
// chunks cleanly. Each data row becomes "Row N: Header: Value, ...".
func parseExcel(filePath string) (string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("no sheets found in Excel file: %s", filePath)
	}

	var builder strings.Builder
	for i, sheet := range sheets {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(fmt.Sprintf("Sheet: %s\n", sheet))

		rows, err := f.GetRows(sheet)
		if err != nil {
			// protected or corrupt sheet
			builder.WriteString(fmt.Sprintf("(Unable to read sheet %s: %v)\n", sheet, err))
			continue
		}
		if len(rows) == 0 || len(rows[0]) == 0 {
			continue
		}

		headers := rows[0]
		for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
			parts := flattenRow(headers, rows[rowIdx])
			if len(parts) > 0 {
				builder.WriteString(fmt.Sprintf("Row %d: %s\n", rowIdx+1, strings.Join(parts, ", ")))
			}
		}
	}

	result := strings.TrimSpace(builder.String())
	if result == "" {
		return "", fmt.Errorf("no content extracted from Excel file: %s", filePath)
	}
	return result, nil
}

func flattenRow(headers, row []string) []string {
	var parts []string
	for col, header := range headers {
		if col >= len(row) {
			break
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		name := strings.TrimSpace(header)
		if name == "" {
			name = fmt.Sprintf("Column %d", col+1)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, value))
	}
	return parts
}
