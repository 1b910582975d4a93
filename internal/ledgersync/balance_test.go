package ledgersync

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLastBalance(t *testing.T) {
	header := [][]string{{"t"}, {"i"}, {}, {"Date"}}

	tests := []struct {
		name string
		rows [][]string
		want string
	}{
		{name: "OnlyHeader", rows: header, want: "0"},
		{name: "Empty", rows: nil, want: "0"},
		{name: "Plain", rows: append(header, []string{"d", "v", "n", "x", "", "10", "1500.5", "p"}), want: "1500.5"},
		{name: "Formatted", rows: append(header, []string{"d", "v", "n", "x", "", "10", "₹ 1,200", "p"}), want: "1200"},
		{name: "Negative", rows: append(header, []string{"d", "v", "n", "x", "5", "", "-5", "p"}), want: "-5"},
		{name: "Garbage", rows: append(header, []string{"d", "v", "n", "x", "", "10", "n/a", "p"}), want: "0"},
		{name: "ShortRow", rows: append(header, []string{"d", "v"}), want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lastBalance(tt.rows, "sheet").String())
		})
	}
}

func TestRow_Cells(t *testing.T) {
	r := Row{
		Date:          "15-03-2024",
		VoucherName:   "Payment",
		VoucherNumber: "abc",
		Description:   "cement",
		Debit:         decimal.NewFromInt(500),
		Balance:       decimal.NewFromInt(-500),
		PartyName:     "Ramesh",
	}

	assert.Equal(t, []string{"15-03-2024", "Payment", "abc", "cement", "500", "", "-500", "Ramesh"}, r.Cells())
}

func TestVoucherToken(t *testing.T) {
	a, b := VoucherToken(), VoucherToken()

	assert.Len(t, a, voucherTokenLength)
	assert.NotEqual(t, a, b)
}
