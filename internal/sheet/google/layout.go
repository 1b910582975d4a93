package google

import (
	"google.golang.org/api/sheets/v4"

	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

var (
	headerBackground = &sheets.Color{Red: 0.2, Green: 0.6, Blue: 0.8}
	white            = &sheets.Color{Red: 1, Green: 1, Blue: 1}
	titleBackground  = &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9}
	titleText        = &sheets.Color{Red: 0.1, Green: 0.1, Blue: 0.1}
	infoBackground   = &sheets.Color{Red: 0.95, Green: 0.95, Blue: 0.95}
	infoText         = &sheets.Color{Red: 0.4, Green: 0.4, Blue: 0.4}
)

const (
	titleRow  = 0
	infoRow   = 1
	headerRow = sheet.HeaderRows - 1
)

// layoutRequests builds the batch that turns an empty tab into a ledger.
func layoutRequests(tabID int64, layout sheet.Layout) []*sheets.Request {
	columns := int64(len(sheet.Headers))

	reqs := []*sheets.Request{
		updateRow(tabID, titleRow, columns, []*sheets.CellData{{
			UserEnteredValue: &sheets.ExtendedValue{StringValue: &layout.Title},
			UserEnteredFormat: &sheets.CellFormat{
				BackgroundColor:     titleBackground,
				HorizontalAlignment: "CENTER",
				TextFormat:          &sheets.TextFormat{Bold: true, FontSize: 16, ForegroundColor: titleText},
			},
		}}),
		merge(tabID, titleRow, columns),
		updateRow(tabID, infoRow, columns, []*sheets.CellData{{
			UserEnteredValue: &sheets.ExtendedValue{StringValue: strPtr(layout.CreationInfo())},
			UserEnteredFormat: &sheets.CellFormat{
				BackgroundColor:     infoBackground,
				HorizontalAlignment: "CENTER",
				TextFormat:          &sheets.TextFormat{FontSize: 10, ForegroundColor: infoText},
			},
		}}),
		merge(tabID, infoRow, columns),
		updateRow(tabID, headerRow, columns, headerCells()),
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:         tabID,
					GridProperties:  &sheets.GridProperties{FrozenRowCount: sheet.HeaderRows},
					ForceSendFields: []string{"SheetId"},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
		validation(tabID, 0, &sheets.BooleanCondition{Type: "DATE_IS_VALID"}),
	}

	for _, col := range []int64{sheet.DebitColumn, sheet.CreditColumn} {
		reqs = append(reqs, validation(tabID, col, &sheets.BooleanCondition{
			Type:   "NUMBER_GREATER_THAN_EQ",
			Values: []*sheets.ConditionValue{{UserEnteredValue: "0"}},
		}))
	}

	for i, width := range sheet.ColumnWidths {
		reqs = append(reqs, &sheets.Request{
			UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
				Range: &sheets.DimensionRange{
					SheetId:         tabID,
					Dimension:       "COLUMNS",
					StartIndex:      int64(i),
					EndIndex:        int64(i + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
				Properties: &sheets.DimensionProperties{PixelSize: width},
				Fields:     "pixelSize",
			},
		})
	}

	return reqs
}

func headerCells() []*sheets.CellData {
	solid := func(width int64) *sheets.Border {
		return &sheets.Border{Style: "SOLID", Width: width}
	}

	cells := make([]*sheets.CellData, len(sheet.Headers))
	for i := range sheet.Headers {
		cells[i] = &sheets.CellData{
			UserEnteredValue: &sheets.ExtendedValue{StringValue: &sheet.Headers[i]},
			UserEnteredFormat: &sheets.CellFormat{
				BackgroundColor:     headerBackground,
				HorizontalAlignment: "CENTER",
				TextFormat:          &sheets.TextFormat{Bold: true, ForegroundColor: white},
				Borders: &sheets.Borders{
					Top:    solid(1),
					Bottom: solid(2),
					Left:   solid(1),
					Right:  solid(1),
				},
			},
		}
	}

	return cells
}

func gridRange(tabID, startRow, endRow, startCol, endCol int64) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          tabID,
		StartRowIndex:    startRow,
		EndRowIndex:      endRow,
		StartColumnIndex: startCol,
		EndColumnIndex:   endCol,
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}

func updateRow(tabID, row, columns int64, cells []*sheets.CellData) *sheets.Request {
	return &sheets.Request{
		UpdateCells: &sheets.UpdateCellsRequest{
			Range:  gridRange(tabID, row, row+1, 0, columns),
			Rows:   []*sheets.RowData{{Values: cells}},
			Fields: "userEnteredValue,userEnteredFormat",
		},
	}
}

func merge(tabID, row, columns int64) *sheets.Request {
	return &sheets.Request{
		MergeCells: &sheets.MergeCellsRequest{
			Range:     gridRange(tabID, row, row+1, 0, columns),
			MergeType: "MERGE_ALL",
		},
	}
}

func validation(tabID, col int64, cond *sheets.BooleanCondition) *sheets.Request {
	return &sheets.Request{
		SetDataValidation: &sheets.SetDataValidationRequest{
			Range: gridRange(tabID, sheet.HeaderRows, gridRows, col, col+1),
			Rule: &sheets.DataValidationRule{
				Condition:    cond,
				ShowCustomUi: true,
				Strict:       true,
			},
		},
	}
}

func strPtr(s string) *string {
	return &s
}
