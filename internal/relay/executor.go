package relay

import (
	"context"

	"bridgeRelay/internal/model"
)

// Executor submits one relay action to the destination. Failures are either
// TransientRelayErrors (retry the same action) or PermanentRelayErrors
// (dead-letter, never retry). Submitting the same EventID-bearing action
// more than once must be safe; the checkpoint dedup set is authoritative.
type Executor interface {
	Relay(ctx context.Context, action model.RelayAction) (model.RelayReceipt, error)
}
