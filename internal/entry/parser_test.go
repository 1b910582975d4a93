package entry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/entry"
)

var today = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func newParser(c entry.Classifier) *entry.Parser {
	return entry.NewParser(c, time.Second, entry.WithClock(func() time.Time { return today }))
}

func TestParser_Parse(t *testing.T) {
	type testCase struct {
		name      string
		text      string
		reply     string
		replyErr  error
		wantErr   error
		wantCheck func(t *testing.T, e *entry.ParsedEntry)
	}

	tests := []testCase{
		{
			name:  "PlainJSON",
			text:  "Paid 500 to Ramesh for cement",
			reply: `{"isValid":true,"date":"15-03-2024","vchName":"Payment","vchNumber":"","description":"Cement","debit":500,"credit":0,"partyName":"Ramesh","confidence":0.9,"reasoning":"paid"}`,
			wantCheck: func(t *testing.T, e *entry.ParsedEntry) {
				assert.True(t, e.IsDebit())
				assert.True(t, e.Debit.Equal(decimal.NewFromInt(500)))
				assert.True(t, e.Credit.IsZero())
				assert.Equal(t, "Ramesh", e.PartyName)
				assert.Equal(t, "15-03-2024", e.FormattedDate())
			},
		},
		{
			name:  "FencedJSON",
			text:  "Received 1200.50 from Suresh",
			reply: "```json\n{\"isValid\":true,\"date\":\"14-03-2024\",\"vchName\":\"Receipt\",\"description\":\"Advance\",\"debit\":0,\"credit\":1200.50,\"partyName\":\"Suresh\",\"confidence\":0.8}\n```",
			wantCheck: func(t *testing.T, e *entry.ParsedEntry) {
				assert.False(t, e.IsDebit())
				assert.Equal(t, "1200.5", e.Amount().String())
				assert.Equal(t, time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC), e.Date)
			},
		},
		{
			name:  "SurroundingProse",
			text:  "spent 40 on tea",
			reply: "Sure! Here it is: {\"isValid\":true,\"debit\":40,\"credit\":0,\"confidence\":0.7} hope that helps",
			wantCheck: func(t *testing.T, e *entry.ParsedEntry) {
				assert.Equal(t, "15-03-2024", e.FormattedDate())
				assert.Equal(t, "Payment", e.VoucherName)
				assert.Equal(t, "spent 40 on tea", e.Description)
			},
		},
		{
			name:  "ConfidenceAtThreshold",
			text:  "got 10",
			reply: `{"isValid":true,"debit":0,"credit":10,"confidence":0.6}`,
			wantCheck: func(t *testing.T, e *entry.ParsedEntry) {
				assert.Equal(t, "Receipt", e.VoucherName)
			},
		},
		{
			name:    "EmptyText",
			text:    "   ",
			wantErr: entry.ErrEmptyText,
		},
		{
			name:     "ClassifierDown",
			text:     "paid 5",
			replyErr: errors.New("503"),
			wantErr:  entry.ErrServiceUnavailable,
		},
		{
			name:    "NoJSON",
			text:    "paid 5",
			reply:   "I cannot help with that",
			wantErr: entry.ErrMalformedResponse,
		},
		{
			name:    "BrokenJSON",
			text:    "paid 5",
			reply:   `{"isValid": true, "debit": }`,
			wantErr: entry.ErrMalformedResponse,
		},
		{
			name:    "BadDate",
			text:    "paid 5",
			reply:   `{"isValid":true,"date":"yesterday","debit":5,"credit":0,"confidence":0.9}`,
			wantErr: entry.ErrMalformedResponse,
		},
		{
			name:    "ConfidenceOutOfRange",
			text:    "paid 5",
			reply:   `{"isValid":true,"debit":5,"credit":0,"confidence":7}`,
			wantErr: entry.ErrMalformedResponse,
		},
		{
			name:    "BelowThreshold",
			text:    "hello there",
			reply:   `{"isValid":true,"debit":5,"credit":0,"confidence":0.4}`,
			wantErr: entry.ErrLowConfidence,
		},
		{
			name:    "NotAnEntry",
			text:    "hello there",
			reply:   `{"isValid":false,"debit":0,"credit":0,"confidence":0.95,"reasoning":"greeting"}`,
			wantErr: entry.ErrLowConfidence,
		},
		{
			name:    "BothSides",
			text:    "paid 5 got 5",
			reply:   `{"isValid":true,"debit":5,"credit":5,"confidence":0.9}`,
			wantErr: entry.ErrLowConfidence,
		},
		{
			name:    "NeitherSide",
			text:    "paid nothing",
			reply:   `{"isValid":true,"debit":0,"credit":0,"confidence":0.9}`,
			wantErr: entry.ErrLowConfidence,
		},
		{
			name:    "NegativeAmount",
			text:    "paid -5",
			reply:   `{"isValid":true,"debit":-5,"credit":0,"confidence":0.9}`,
			wantErr: entry.ErrLowConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			classifier := entry.NewMockClassifier(ctrl)
			if tt.reply != "" || tt.replyErr != nil {
				classifier.EXPECT().
					Classify(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, prompt string) (string, error) {
						assert.Contains(t, prompt, strings.TrimSpace(tt.text))
						assert.Contains(t, prompt, "Current date: 15-03-2024")
						return tt.reply, tt.replyErr
					})
			}

			got, err := newParser(classifier).Parse(context.Background(), tt.text)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.wantCheck(t, got)
		})
	}
}

func TestParser_LowConfidenceCarriesEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	classifier := entry.NewMockClassifier(ctrl)
	classifier.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		Return(`{"isValid":true,"debit":5,"credit":0,"confidence":0.3,"partyName":"X"}`, nil)

	_, err := newParser(classifier).Parse(context.Background(), "maybe paid X")

	var lowErr *entry.LowConfidenceError
	require.ErrorAs(t, err, &lowErr)
	assert.Equal(t, "X", lowErr.Entry.PartyName)
	assert.InDelta(t, 0.3, lowErr.Entry.Confidence, 1e-9)
}

func TestParser_AppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	classifier := entry.NewMockClassifier(ctrl)
	classifier.EXPECT().
		Classify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	p := entry.NewParser(classifier, 10*time.Millisecond)
	_, err := p.Parse(context.Background(), "paid 5")

	assert.ErrorIs(t, err, entry.ErrServiceUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
