package ledger_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func TestService_Create(t *testing.T) {
	owner := uuid.New()

	type testCase struct {
		name      string
		params    ledger.CreateParams
		setupMock func(m *ledger.MockRepository)
		wantErr   error
		wantTitle string
	}

	tests := []testCase{
		{
			name:   "Success",
			params: ledger.CreateParams{Title: "  ABC Building Work  ", Owner: owner},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().GetLedgerByTitle(gomock.Any(), "ABC Building Work").Return(nil, ledger.ErrNotFound)
				m.EXPECT().
					CreateLedger(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *ledger.Ledger) error {
						l.ID = uuid.New()
						l.CreatedAt = time.Now()
						return nil
					})
			},
			wantTitle: "ABC Building Work",
		},
		{
			name:    "EmptyTitle",
			params:  ledger.CreateParams{Title: "   ", Owner: owner},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "TitleTooLong",
			params:  ledger.CreateParams{Title: strings.Repeat("x", ledger.MaxTitleLength+1), Owner: owner},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "MissingOwner",
			params:  ledger.CreateParams{Title: "Site"},
			wantErr: ledger.ErrValidation,
		},
		{
			name:   "DuplicateDetectedUpFront",
			params: ledger.CreateParams{Title: "Site", Owner: owner},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().GetLedgerByTitle(gomock.Any(), "Site").Return(&ledger.Ledger{ID: uuid.New()}, nil)
			},
			wantErr: ledger.ErrConflict,
		},
		{
			name:   "DuplicateDetectedByIndex",
			params: ledger.CreateParams{Title: "Site", Owner: owner},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().GetLedgerByTitle(gomock.Any(), "Site").Return(nil, ledger.ErrNotFound)
				m.EXPECT().CreateLedger(gomock.Any(), gomock.Any()).Return(ledger.ErrConflict)
			},
			wantErr: ledger.ErrConflict,
		},
		{
			name:   "LookupError",
			params: ledger.CreateParams{Title: "Site", Owner: owner},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().GetLedgerByTitle(gomock.Any(), "Site").Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, ledger.ErrValidation) || errors.Is(tt.wantErr, ledger.ErrConflict) {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, owner, got.CreatedBy)
			assert.False(t, got.IsComplete())
		})
	}
}

func TestService_NormalizeTitle_NFC(t *testing.T) {
	decomposed := "Cafe\u0301"
	composed := "Caf\u00e9"

	assert.Equal(t, composed, ledger.NormalizeTitle(decomposed))
}

func TestService_AttachSheetRef(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)
	id := uuid.New()

	err := svc.AttachSheetRef(context.Background(), id, " ")
	assert.ErrorIs(t, err, ledger.ErrValidation)

	repo.EXPECT().AttachSheetRef(gomock.Any(), id, "sheet-1").Return(nil)
	assert.NoError(t, svc.AttachSheetRef(context.Background(), id, "sheet-1"))
}

func TestService_PurgeIncomplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	before := time.Now()

	repo.EXPECT().
		DeleteIncomplete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cutoff time.Time) (int64, error) {
			assert.True(t, cutoff.Before(before.Add(-10*time.Minute)))
			return 2, nil
		})

	n, err := svc.PurgeIncomplete(context.Background(), 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestLedger_IsComplete(t *testing.T) {
	empty := ""
	ref := "abc"

	assert.False(t, (&ledger.Ledger{}).IsComplete())
	assert.False(t, (&ledger.Ledger{SheetRef: &empty}).IsComplete())
	assert.True(t, (&ledger.Ledger{SheetRef: &ref}).IsComplete())
}
