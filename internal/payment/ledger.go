package payment

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/skillspark/hub-api/internal/common"
)

// ErrLedgerDisabled is returned by lookups when no Redis client is configured.
var ErrLedgerDisabled = errors.New("payment: verification ledger disabled")

// Status values reported by the status lookup.
const (
	StatusVerified = "VERIFIED"
	StatusUnknown  = "UNKNOWN"
)

// Ledger remembers verified (order, payment) pairs so that a captured
// signature cannot be replayed. The gateway stays the source of truth for
// order state; the ledger only knows what this service has verified.
type Ledger struct {
	R   *redis.Client
	TTL time.Duration
}

// Enabled reports whether the ledger has a backing store.
func (l Ledger) Enabled() bool {
	return l.R != nil
}

func (l Ledger) ttl() time.Duration {
	if l.TTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return l.TTL
}

func pairKey(orderID, paymentID string) string {
	return "payverify:" + common.Sha256Hex(orderID+"|"+paymentID)
}

func orderKey(orderID string) string {
	return "paystatus:" + common.Sha256Hex(orderID)
}

// Record marks the pair as verified. It returns false when the pair had
// already been recorded. A disabled ledger records nothing and returns true.
//
// The order status is written before the pair is claimed, so a failure at
// either step leaves the pair unclaimed and the caller can retry. Marking the
// order again for a replayed pair rewrites the same payment id.
func (l Ledger) Record(ctx context.Context, orderID, paymentID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	if err := l.MarkOrder(ctx, orderID, paymentID); err != nil {
		return false, err
	}
	return l.R.SetNX(ctx, pairKey(orderID, paymentID), paymentID, l.ttl()).Result()
}

// MarkOrder records paymentID as the verified payment for orderID.
func (l Ledger) MarkOrder(ctx context.Context, orderID, paymentID string) error {
	if !l.Enabled() {
		return nil
	}
	return l.R.Set(ctx, orderKey(orderID), paymentID, l.ttl()).Err()
}

// Status returns StatusVerified and the payment id when the order has a
// verified payment on record.
func (l Ledger) Status(ctx context.Context, orderID string) (string, string, error) {
	if !l.Enabled() {
		return "", "", ErrLedgerDisabled
	}
	paymentID, err := l.R.Get(ctx, orderKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return StatusUnknown, "", nil
	}
	if err != nil {
		return "", "", err
	}
	return StatusVerified, paymentID, nil
}
