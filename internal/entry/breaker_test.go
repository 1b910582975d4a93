package entry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/entry"
)

func TestBreakerClassifier_OpensAfterConsecutiveFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := entry.NewMockClassifier(ctrl)
	inner.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("", errors.New("boom")).Times(2)

	b := entry.NewBreakerClassifier(inner, entry.BreakerSettings{
		Name:                "test",
		ConsecutiveFailures: 2,
		Cooldown:            time.Minute,
	})

	for range 2 {
		_, err := b.Classify(context.Background(), "p")
		assert.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Classify(context.Background(), "p")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	p := entry.NewParser(b, time.Second)
	_, err = p.Parse(context.Background(), "paid 5")
	assert.ErrorIs(t, err, entry.ErrServiceUnavailable)
}

func TestBreakerClassifier_PassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := entry.NewMockClassifier(ctrl)
	inner.EXPECT().Classify(gomock.Any(), "p").Return("{}", nil)

	b := entry.NewBreakerClassifier(inner, entry.BreakerSettings{Name: "test"})

	out, err := b.Classify(context.Background(), "p")
	assert.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
