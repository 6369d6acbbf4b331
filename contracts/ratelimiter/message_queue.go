package ratelimiter

import (
	"fmt"
	"math"
	"slices"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

const secondsPerHour = 3600

// mustQueueMessage reports whether the sender's messages wait behind a timelock.
func mustQueueMessage(deps host.Deps, info types.MessageInfo) (bool, error) {
	delay, _, err := timelockDelay.May(deps.Storage, info.Sender)
	if err != nil {
		return false, err
	}
	return delay > 0, nil
}

// queueMessage appends msg to the back of the queue. Its id is "{height}_{tx_index}".
func queueMessage(deps host.Deps, env types.Env, info types.MessageInfo, msg ExecuteMsg) (*types.Response, error) {
	delay, err := timelockDelay.Load(deps.Storage, info.Sender)
	if err != nil {
		return nil, err
	}
	var txIndex uint32
	if env.Transaction != nil {
		txIndex = env.Transaction.Index
	}
	id := fmt.Sprintf("%d_%d", env.Block.Height, txIndex)

	_, err = messageQueue.Update(deps.Storage, func(queue []QueuedMessage, _ bool) ([]QueuedMessage, error) {
		return append(queue, QueuedMessage{
			Message:       msg,
			SubmittedAt:   env.Block.Time,
			TimelockDelay: delay,
			MessageID:     id,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "queue_message").
		AddAttribute("message_id", id), nil
}

// processMessageQueue pops the requested messages and runs every one whose
// timelock has passed. Messages that are not ready go back to the end of the
// queue and still report "ok". A message that fails reports its error.
func (c *Contract) processMessageQueue(deps host.Deps, env types.Env, count *uint64, ids []string) (*types.Response, error) {
	if count == nil && ids == nil {
		return nil, fmt.Errorf("one of count or message_ids is required: %w", ErrInvalidParameters)
	}

	queue, _, err := messageQueue.May(deps.Storage)
	if err != nil {
		return nil, err
	}

	var popped []QueuedMessage
	if ids != nil {
		queue = slices.DeleteFunc(queue, func(m QueuedMessage) bool {
			if slices.Contains(ids, m.MessageID) {
				popped = append(popped, m)
				return true
			}
			return false
		})
	} else {
		n := len(queue)
		if *count < uint64(n) {
			n = int(*count)
		}
		popped = append(popped, queue[:n]...)
		queue = queue[n:]
	}
	if err := messageQueue.Save(deps.Storage, queue); err != nil {
		return nil, err
	}

	res := types.NewResponse().AddAttribute("method", "process_messages")
	for _, m := range popped {
		if err := c.tryProcessMessage(deps, env, m); err != nil {
			res.AddAttribute(m.MessageID, err.Error())
			continue
		}
		res.AddAttribute(m.MessageID, "ok")
	}
	return res, nil
}

func (c *Contract) tryProcessMessage(deps host.Deps, env types.Env, m QueuedMessage) error {
	delay := uint64(math.MaxUint64)
	if m.TimelockDelay <= math.MaxUint64/secondsPerHour {
		delay = m.TimelockDelay * secondsPerHour
	}
	if env.Block.Time < m.SubmittedAt.PlusSeconds(delay) {
		_, err := messageQueue.Update(deps.Storage, func(queue []QueuedMessage, _ bool) ([]QueuedMessage, error) {
			return append(queue, m), nil
		})
		return err
	}

	// each message runs over its own cache so a failure leaves no partial writes
	cache := storage.NewCacheStore(deps.Storage)
	nested := deps
	nested.Storage = cache
	if _, err := c.matchExecute(nested, env, m.Message); err != nil {
		return err
	}
	return cache.Write()
}

// removeMessage drops every queued message with the given id. An unknown id is not an error.
func removeMessage(deps host.Deps, id string) (*types.Response, error) {
	queue, _, err := messageQueue.May(deps.Storage)
	if err != nil {
		return nil, err
	}
	queue = slices.DeleteFunc(queue, func(m QueuedMessage) bool { return m.MessageID == id })
	if err := messageQueue.Save(deps.Storage, queue); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "remove_message").
		AddAttribute("message_id", id), nil
}
