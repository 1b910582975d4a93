package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"

	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/export"
	exportHandler "github.com/MrJamesThe3rd/tally/internal/http/export"
	ledgerHandler "github.com/MrJamesThe3rd/tally/internal/http/ledger"
	"github.com/MrJamesThe3rd/tally/internal/identity"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/sheet"
	"github.com/MrJamesThe3rd/tally/internal/sheet/memory"
)

var secret = []byte("router-secret")

type harness struct {
	router  http.Handler
	ledgers *ledger.MockRepository
	users   *identity.MockRepository
	sheets  *memory.Store
}

func newHarness(t *testing.T, limiter *rate.Limiter) harness {
	ctrl := gomock.NewController(t)

	h := harness{
		ledgers: ledger.NewMockRepository(ctrl),
		users:   identity.NewMockRepository(ctrl),
		sheets:  memory.New(),
	}

	ledgerSvc := ledger.NewService(h.ledgers)

	h.router = tallyHttp.New(
		tallyHttp.Options{JWTSecret: secret, AllowedOrigins: []string{"https://app.example"}, Limiter: limiter},
		identity.NewService(h.users, time.Minute),
		ledgerHandler.NewHandler(ledgerSvc),
		exportHandler.NewHandler(export.NewService(ledgerSvc, h.sheets)),
	)

	return h
}

func authorized(t *testing.T, path string) *http.Request {
	token, err := auth.Issue(secret, "ravi", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	return req
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, nil)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListLedgers(t *testing.T) {
	user := &identity.User{ID: uuid.New(), Handle: "ravi"}
	ref := "sheet-1"
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	h := newHarness(t, nil)
	h.users.EXPECT().GetUserByHandle(gomock.Any(), "ravi").Return(user, nil)
	h.ledgers.EXPECT().ListLedgersByOwner(gomock.Any(), user.ID).Return([]*ledger.Ledger{
		{ID: uuid.New(), Title: "ABC Building Work", SheetRef: &ref, CreatedAt: created},
	}, nil)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, authorized(t, "/api/v1/ledgers"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "ABC Building Work", got[0]["title"])
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-1/edit", got[0]["sheet_url"])
}

func TestListLedgers_StoreFails(t *testing.T) {
	user := &identity.User{ID: uuid.New(), Handle: "ravi"}

	h := newHarness(t, nil)
	h.users.EXPECT().GetUserByHandle(gomock.Any(), "ravi").Return(user, nil)
	h.ledgers.EXPECT().ListLedgersByOwner(gomock.Any(), user.ID).Return(nil, errors.New("db down"))

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, authorized(t, "/api/v1/ledgers"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListLedgers_RequiresToken(t *testing.T) {
	h := newHarness(t, nil)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ledgers", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ledgers", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, rate.NewLimiter(rate.Every(time.Hour), 1))

	first := httptest.NewRecorder()
	h.router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/ledgers", nil))
	assert.Equal(t, http.StatusUnauthorized, first.Code)

	second := httptest.NewRecorder()
	h.router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/ledgers", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestExportLedger(t *testing.T) {
	user := &identity.User{ID: uuid.New(), Handle: "ravi"}

	h := newHarness(t, nil)

	doc, err := h.sheets.CreateDocument(context.Background(), sheet.Layout{Title: "Site", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, h.sheets.AppendRow(context.Background(), doc.ID, sheet.DataRange,
		[]string{"15-03-2024", "Payment", "a1", "Materials", "500", "", "-500", "Shop"}))

	l := &ledger.Ledger{ID: uuid.New(), Title: "Site", CreatedBy: user.ID, SheetRef: &doc.ID}

	h.users.EXPECT().GetUserByHandle(gomock.Any(), "ravi").Return(user, nil).AnyTimes()
	h.ledgers.EXPECT().GetLedger(gomock.Any(), l.ID).Return(l, nil).Times(2)
	h.ledgers.EXPECT().GetLedger(gomock.Any(), gomock.Not(l.ID)).Return(nil, ledger.ErrNotFound)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, authorized(t, "/api/v1/ledgers/"+l.ID.String()+"/export"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "_Site.csv")
	assert.Contains(t, rec.Body.String(), "15-03-2024,Payment,a1,Materials,500,,-500,Shop")

	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, authorized(t, "/api/v1/ledgers/"+l.ID.String()+"/summary"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Site: 1 entries")

	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, authorized(t, "/api/v1/ledgers/"+uuid.NewString()+"/export"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, authorized(t, "/api/v1/ledgers/not-a-uuid/export"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
