package entry

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerClassifier short-circuits calls to a classifier that keeps failing.
// While the breaker is open every call fails fast with gobreaker.ErrOpenState.
type BreakerClassifier struct {
	next Classifier
	cb   *gobreaker.CircuitBreaker
}

type BreakerSettings struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
}

func NewBreakerClassifier(next Classifier, s BreakerSettings) *BreakerClassifier {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}

	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("classifier breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerClassifier{next: next, cb: cb}
}

func (b *BreakerClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		text, err := b.next.Classify(ctx, prompt)
		if err != nil {
			return nil, err
		}

		return text, nil
	})
	if err != nil {
		return "", err
	}

	return out.(string), nil
}

func (b *BreakerClassifier) State() gobreaker.State {
	return b.cb.State()
}
