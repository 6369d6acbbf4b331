package ratelimiter

import (
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

var (
	govModule = storage.NewItem[string]("gov_module")
	ibcModule = storage.NewItem[string]("ibc_module")

	// rateLimitTrackers holds every quota of a path, keyed by (channel_id, denom).
	rateLimitTrackers = storage.NewMap[storage.Pair, []RateLimit]("flow", storage.PairKey)

	// acceptedChannelsForRestrictedDenom maps a denom to the only channels it may leave through.
	acceptedChannelsForRestrictedDenom = storage.NewMap[string, []string]("denom_restrictions", storage.StringKey)

	rbacPermissions = storage.NewMap[string, []Role]("rbac", storage.StringKey)
	timelockDelay   = storage.NewMap[string, uint64]("timelock_delay", storage.StringKey)
	messageQueue    = storage.NewItem[[]QueuedMessage]("message_queue")
)

func pathKey(p Path) storage.Pair {
	return storage.Pair{First: p.Channel, Second: p.Denom}
}

// QueuedMessage is an execute message waiting for its sender's timelock to pass.
type QueuedMessage struct {
	Message       ExecuteMsg      `json:"message"`
	SubmittedAt   types.Timestamp `json:"submitted_at"`
	TimelockDelay uint64          `json:"timelock_delay"` // hours
	MessageID     string          `json:"message_id"`
}

func loadTrackers(store storage.KVStore, p Path) ([]RateLimit, error) {
	trackers, _, err := rateLimitTrackers.May(store, pathKey(p))
	return trackers, err
}

func saveTrackers(store storage.KVStore, p Path, trackers []RateLimit) error {
	return rateLimitTrackers.Save(store, pathKey(p), trackers)
}
