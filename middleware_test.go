package toolcodec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoRepairer() Repairer {
	return RepairFunc(func(_ context.Context, text string) (string, error) {
		return text, nil
	})
}

func TestWithRepairLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	wrapped := WithRepairLogging(logger)(echoRepairer())
	out, err := wrapped.Repair(context.Background(), `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
	logStr := buf.String()
	assert.Contains(t, logStr, "repair start")
	assert.Contains(t, logStr, "repair end")

	buf.Reset()
	failing := WithRepairLogging(logger)(RepairFunc(func(context.Context, string) (string, error) {
		return "", errors.New("bad input")
	}))
	_, err = failing.Repair(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "repair error")
	assert.Contains(t, buf.String(), "bad input")
}

func TestWithRepairRecovery(t *testing.T) {
	wrapped := WithRepairRecovery()(RepairFunc(func(context.Context, string) (string, error) {
		panic("test panic")
	}))
	out, err := wrapped.Repair(context.Background(), "x")
	require.Error(t, err)
	assert.Empty(t, out)
	var pe *panicError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "test panic")
}

func TestWithRepairTimeoutMiddleware(t *testing.T) {
	slow := RepairFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	wrapped := WithRepairTimeoutMiddleware(5 * time.Millisecond)(slow)
	out, err := wrapped.Repair(context.Background(), "x")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, ErrRepairTimeout)
}

func TestWithRepairTimeoutMiddleware_IgnoresContext(t *testing.T) {
	release := make(chan struct{})
	stubborn := RepairFunc(func(_ context.Context, text string) (string, error) {
		<-release
		return text, nil
	})
	wrapped := WithRepairTimeoutMiddleware(5 * time.Millisecond)(stubborn)
	_, err := wrapped.Repair(context.Background(), "x")
	close(release)
	assert.ErrorIs(t, err, ErrRepairTimeout)
}

func TestWithRepairTimeoutMiddleware_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := RepairFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	_, err := WithRepairTimeoutMiddleware(time.Second)(slow).Repair(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRepairTimeout)
}

func TestWithRepairTimeoutMiddleware_Disabled(t *testing.T) {
	inner := echoRepairer()
	for _, d := range []time.Duration{0, -time.Second} {
		wrapped := WithRepairTimeoutMiddleware(d)(inner)
		out, err := wrapped.Repair(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "x", out)
	}
}

func TestChainRepairer_Order(t *testing.T) {
	var trace []string
	mark := func(name string) RepairMiddleware {
		return func(next Repairer) Repairer {
			return RepairFunc(func(ctx context.Context, text string) (string, error) {
				trace = append(trace, name)
				return next.Repair(ctx, text+name)
			})
		}
	}
	r := ChainRepairer(echoRepairer(), mark("a"), mark("b"), mark("c"))
	out, err := r.Repair(context.Background(), ">")
	require.NoError(t, err)
	assert.Equal(t, ">abc", out)
	assert.Equal(t, []string{"a", "b", "c"}, trace)
	assert.Equal(t, 1, strings.Count(out, "a"))
}

func TestChainRepairer_RecoveryInsideTimeout(t *testing.T) {
	r := ChainRepairer(
		RepairFunc(func(context.Context, string) (string, error) { panic("deep") }),
		WithRepairTimeoutMiddleware(time.Second),
		WithRepairRecovery(),
	)
	_, err := r.Repair(context.Background(), "x")
	var pe *panicError
	require.ErrorAs(t, err, &pe)
}

func TestDefaultRepairer(t *testing.T) {
	r := DefaultRepairer()
	out, err := r.Repair(context.Background(), `{"a": 1,}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, out)
}
