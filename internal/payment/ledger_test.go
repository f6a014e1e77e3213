package payment_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/payment"
)

// failPlainSetOnce fails the first SET without NX that passes through the
// client. SETNX claims are left alone.
type failPlainSetOnce struct {
	fired atomic.Bool
}

func (h *failPlainSetOnce) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *failPlainSetOnce) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if isPlainSet(cmd) && h.fired.CompareAndSwap(false, true) {
			err := errors.New("connection reset by peer")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (h *failPlainSetOnce) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func isPlainSet(cmd redis.Cmder) bool {
	if cmd.Name() != "set" {
		return false
	}
	for _, arg := range cmd.Args() {
		if s, ok := arg.(string); ok && strings.EqualFold(s, "nx") {
			return false
		}
	}
	return true
}

func newFlakyRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	client.AddHook(&failPlainSetOnce{})
	return client
}

func TestLedgerRecordRetriesAfterStatusWriteFails(t *testing.T) {
	ledger := payment.Ledger{R: newFlakyRedis(t), TTL: time.Hour}
	ctx := context.Background()

	first, err := ledger.Record(ctx, "order_1", "pay_1")
	require.Error(t, err)
	require.False(t, first)

	first, err = ledger.Record(ctx, "order_1", "pay_1")
	require.NoError(t, err)
	require.True(t, first)

	status, paymentID, err := ledger.Status(ctx, "order_1")
	require.NoError(t, err)
	require.Equal(t, payment.StatusVerified, status)
	require.Equal(t, "pay_1", paymentID)

	first, err = ledger.Record(ctx, "order_1", "pay_1")
	require.NoError(t, err)
	require.False(t, first)
}

func TestLedgerDisabled(t *testing.T) {
	ledger := payment.Ledger{}
	first, err := ledger.Record(context.Background(), "order_1", "pay_1")
	require.NoError(t, err)
	require.True(t, first)

	_, _, err = ledger.Status(context.Background(), "order_1")
	require.ErrorIs(t, err, payment.ErrLedgerDisabled)
}
