package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/sheet"
)

func TestLayoutRequests(t *testing.T) {
	layout := sheet.Layout{Title: "Site A", CreatedBy: "ravi", CreatedAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}

	reqs := layoutRequests(7, layout)

	var (
		headerRow  []string
		frozen     int64
		validated  []int64
		widths     []int64
		titleValue string
		infoValue  string
	)

	for _, r := range reqs {
		switch {
		case r.UpdateCells != nil:
			rng := r.UpdateCells.Range
			assert.Equal(t, int64(7), rng.SheetId)

			values := r.UpdateCells.Rows[0].Values
			switch rng.StartRowIndex {
			case titleRow:
				titleValue = *values[0].UserEnteredValue.StringValue
			case infoRow:
				infoValue = *values[0].UserEnteredValue.StringValue
			case headerRow:
				for _, v := range values {
					headerRow = append(headerRow, *v.UserEnteredValue.StringValue)
				}
			}
		case r.UpdateSheetProperties != nil:
			frozen = r.UpdateSheetProperties.Properties.GridProperties.FrozenRowCount
		case r.SetDataValidation != nil:
			assert.Equal(t, int64(sheet.HeaderRows), r.SetDataValidation.Range.StartRowIndex)
			validated = append(validated, r.SetDataValidation.Range.StartColumnIndex)
		case r.UpdateDimensionProperties != nil:
			widths = append(widths, r.UpdateDimensionProperties.Properties.PixelSize)
		}
	}

	assert.Equal(t, "Site A", titleValue)
	assert.Equal(t, "Created by: ravi | Created on: 15-03-2024 09:00", infoValue)
	assert.Equal(t, sheet.Headers, headerRow)
	assert.Equal(t, int64(sheet.HeaderRows), frozen)
	assert.Equal(t, []int64{0, sheet.DebitColumn, sheet.CreditColumn}, validated)
	assert.Equal(t, sheet.ColumnWidths, widths)
}

func TestCellString(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{float64(1500), "1500"},
		{1234.5, "1234.5"},
		{true, "true"},
		{"15-03-2024", "15-03-2024"},
		{float64(-2500.75), "-2500.75"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, cellString(tt.in))
	}
}
