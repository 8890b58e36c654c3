package room

import (
	"context"
	"encoding/json"
)

// Channel is the realtime provider contract the synchronizer needs: a
// presence set with track semantics plus fire-and-forget, at-most-once
// broadcast delivery, ordered per sender. Handlers must be registered
// before Subscribe; the provider invokes them sequentially from a single
// goroutine.
type Channel interface {
	// Subscribe opens the channel. It returns once the subscription is
	// established and handler dispatch has begun.
	Subscribe(ctx context.Context) error
	// Track upserts this client's presence payload, visible to all
	// subscribers' next sync.
	Track(rec PresenceRecord) error
	// OnSync registers the handler for full presence snapshots.
	OnSync(fn func(records []PresenceRecord))
	// OnBroadcast registers the handler for a named broadcast event kind.
	OnBroadcast(event string, fn func(payload json.RawMessage))
	// Send broadcasts a payload to all subscribers, the sender included.
	Send(event string, payload any) error
	// Unsubscribe tears the channel down. Immediate and unconditional;
	// in-flight sends are not awaited.
	Unsubscribe() error
}
