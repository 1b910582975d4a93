package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/sheet"
	"github.com/MrJamesThe3rd/tally/internal/sheet/memory"
)

type fakeLedgers struct {
	ledgers map[uuid.UUID]*ledger.Ledger
}

func (f *fakeLedgers) Get(_ context.Context, id uuid.UUID) (*ledger.Ledger, error) {
	l, ok := f.ledgers[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	return l, nil
}

func setup(t *testing.T, rows ...[]string) (*Service, *ledger.Ledger, *memory.Store) {
	t.Helper()

	store := memory.New()
	ctx := context.Background()

	h, err := store.CreateDocument(ctx, sheet.Layout{Title: "ABC Building Work", CreatedBy: "ravi", CreatedAt: time.Now()})
	require.NoError(t, err)

	for _, row := range rows {
		require.NoError(t, store.AppendRow(ctx, h.ID, sheet.DataRange, row))
	}

	l := &ledger.Ledger{ID: uuid.New(), Title: "ABC Building Work", CreatedBy: uuid.New(), SheetRef: &h.ID}
	svc := NewService(&fakeLedgers{ledgers: map[uuid.UUID]*ledger.Ledger{l.ID: l}}, store)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }

	return svc, l, store
}

func TestService_Statement(t *testing.T) {
	svc, l, _ := setup(t,
		[]string{"01-03-2024", "Receipt", "a1", "Advance", "", "10000", "10000", "Client"},
		[]string{"02-03-2024", "Payment", "a2", "Materials", "500", "", "9500", "Shop"},
		[]string{"03-03-2024", "Payment", "a3", "Labour", "1,200.50", "", "8299.5"},
	)

	st, err := svc.Statement(context.Background(), l.CreatedBy, l.ID)
	require.NoError(t, err)

	require.Len(t, st.Rows, 3)
	assert.Len(t, st.Rows[2], len(sheet.Headers))
	assert.Equal(t, "1700.5", st.Debit.String())
	assert.Equal(t, "10000", st.Credit.String())
	assert.Equal(t, "8299.5", st.Balance.String())
}

func TestService_Statement_Empty(t *testing.T) {
	svc, l, _ := setup(t)

	st, err := svc.Statement(context.Background(), l.CreatedBy, l.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Rows)
	assert.True(t, st.Balance.IsZero())
}

func TestService_Statement_NotFound(t *testing.T) {
	svc, l, store := setup(t)
	ctx := context.Background()

	_, err := svc.Statement(ctx, uuid.New(), l.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound, "other owner")

	_, err = svc.Statement(ctx, l.CreatedBy, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrNotFound, "unknown ledger")

	require.NoError(t, store.DeleteDocument(ctx, *l.SheetRef))

	_, err = svc.Statement(ctx, l.CreatedBy, l.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound, "sheet deleted")
}

func TestService_WriteCSV(t *testing.T) {
	svc, l, _ := setup(t,
		[]string{"02-03-2024", "Payment", "a2", "Cement, sand", "500", "", "-500", "Shop"},
	)

	st, err := svc.Statement(context.Background(), l.CreatedBy, l.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, st))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Date,"))
	assert.Equal(t, `02-03-2024,Payment,a2,"Cement, sand",500,,-500,Shop`, lines[1])
}

func TestService_FilenameAndSummary(t *testing.T) {
	svc, l, _ := setup(t,
		[]string{"01-03-2024", "Receipt", "a1", "Advance", "", "100", "100", "Client"},
		[]string{"02-03-2024", "Payment", "a2", "Materials", "40", "", "60", "Shop"},
	)

	st, err := svc.Statement(context.Background(), l.CreatedBy, l.ID)
	require.NoError(t, err)

	assert.Equal(t, "20240315_ABC_Building_Work.csv", svc.Filename(st))

	summary := svc.Summary(st)
	assert.Contains(t, summary, "ABC Building Work: 2 entries")
	assert.Contains(t, summary, "* 01-03-2024 | Advance | +100 | 100")
	assert.Contains(t, summary, "* 02-03-2024 | Materials | -40 | 60")
	assert.Contains(t, summary, "Debit 40.00 | Credit 100.00 | Balance 60.00")
}
