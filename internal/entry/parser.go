package entry

//go:generate mockgen -source=parser.go -destination=classifier_mock.go -package=entry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Classifier sends a prompt to a language model and returns its raw text reply.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

type Parser struct {
	classifier Classifier
	timeout    time.Duration
	now        func() time.Time
}

type Option func(*Parser)

func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

func NewParser(classifier Classifier, timeout time.Duration, opts ...Option) *Parser {
	p := &Parser{
		classifier: classifier,
		timeout:    timeout,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// classification mirrors the JSON object the prompt asks for.
type classification struct {
	IsValid     bool            `json:"isValid"`
	Date        string          `json:"date"`
	VchName     string          `json:"vchName"`
	VchNumber   string          `json:"vchNumber"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	PartyName   string          `json:"partyName"`
	Confidence  float64         `json:"confidence"`
	Reasoning   string          `json:"reasoning"`
}

// Parse classifies text into a ParsedEntry. It makes a single classifier call
// and never retries; ErrServiceUnavailable tells the caller a retry may help.
func (p *Parser) Parse(ctx context.Context, text string) (*ParsedEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	today := p.now()

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc

		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()

	raw, err := p.classifier.Classify(callCtx, BuildPrompt(text, today))
	if err != nil {
		slog.Warn("classifier call failed", "error", err, "elapsed", time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	payload, ok := extractJSON(raw)
	if !ok {
		slog.Warn("classifier reply has no JSON object", "reply", truncate(raw, 200))
		return nil, ErrMalformedResponse
	}

	var c classification
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		slog.Warn("decoding classifier reply", "error", err, "reply", truncate(payload, 200))
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	entry, err := c.toEntry(text, today)
	if err != nil {
		return nil, err
	}

	if err := gate(entry); err != nil {
		slog.Info("entry rejected by confidence gate",
			"confidence", entry.Confidence,
			"reason", err.(*LowConfidenceError).Reason,
		)

		return nil, err
	}

	return entry, nil
}

func (c *classification) toEntry(text string, today time.Time) (*ParsedEntry, error) {
	if c.Confidence < 0 || c.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrMalformedResponse, c.Confidence)
	}

	date, err := parseDate(c.Date, today)
	if err != nil {
		return nil, err
	}

	e := &ParsedEntry{
		IsValid:       c.IsValid,
		Date:          date,
		VoucherName:   strings.TrimSpace(c.VchName),
		VoucherNumber: strings.TrimSpace(c.VchNumber),
		Description:   strings.TrimSpace(c.Description),
		Debit:         c.Debit,
		Credit:        c.Credit,
		PartyName:     strings.TrimSpace(c.PartyName),
		Confidence:    c.Confidence,
		Reasoning:     strings.TrimSpace(c.Reasoning),
	}

	if e.Description == "" {
		e.Description = text
	}

	if e.VoucherName == "" {
		if e.IsDebit() {
			e.VoucherName = "Payment"
		} else {
			e.VoucherName = "Receipt"
		}
	}

	return e, nil
}

func gate(e *ParsedEntry) error {
	reject := func(reason string) error {
		return &LowConfidenceError{Entry: e, Reason: reason}
	}

	switch {
	case !e.IsValid:
		if e.Reasoning != "" {
			return reject(e.Reasoning)
		}

		return reject("not a financial entry")
	case e.Confidence < ConfidenceThreshold:
		return reject(fmt.Sprintf("confidence below %.1f", ConfidenceThreshold))
	case e.Debit.IsNegative() || e.Credit.IsNegative():
		return reject("amounts must not be negative")
	case e.Debit.IsZero() == e.Credit.IsZero():
		return reject("exactly one of debit or credit must be set")
	}

	return nil
}

func parseDate(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return dateOnly(today), nil
	}

	for _, layout := range []string{DateLayout, "2006-01-02", "02/01/2006"} {
		if t, err := time.ParseInLocation(layout, s, today.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrMalformedResponse, s)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// extractJSON strips markdown code fences and stray backticks and returns the
// outermost JSON object in raw.
func extractJSON(raw string) (string, bool) {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start < 0 || end <= start {
		return "", false
	}

	return s[start : end+1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
