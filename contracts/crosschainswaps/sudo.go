package crosschainswaps

import (
	"strconv"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// receiveAck settles an in-flight packet. A failed ack makes its funds recoverable.
func receiveAck(deps host.Deps, ack IBCAck) (*types.Response, error) {
	status := StatusAckSuccess
	if !ack.Success {
		status = StatusAckFailure
	}
	res, err := settlePacket(deps, storage.ChannelSeq{Channel: ack.Channel, Sequence: ack.Sequence}, status)
	if err != nil {
		return nil, err
	}
	return res.AddAttribute("ack", ack.Ack), nil
}

func receiveTimeout(deps host.Deps, timeout IBCTimeout) (*types.Response, error) {
	return settlePacket(deps, storage.ChannelSeq{Channel: timeout.Channel, Sequence: timeout.Sequence}, StatusTimedOut)
}

func settlePacket(deps host.Deps, key storage.ChannelSeq, status PacketLifecycleStatus) (*types.Response, error) {
	method := "receive_ack"
	if status == StatusTimedOut {
		method = "receive_timeout"
	}
	res := types.NewResponse().
		AddAttribute("method", method).
		AddAttribute("channel", key.Channel).
		AddAttribute("sequence", strconv.FormatUint(key.Sequence, 10))

	packet, found, err := inflightPackets.May(deps.Storage, key)
	if err != nil {
		return nil, err
	}
	if !found {
		// packets sent by other contracts share this callback
		if status == StatusTimedOut {
			return res.AddAttribute("msg", "unexpected timeout"), nil
		}
		return res.AddAttribute("msg", "unexpected ack"), nil
	}
	if err := inflightPackets.Remove(deps.Storage, key); err != nil {
		return nil, err
	}
	if status == StatusAckSuccess {
		return res.AddAttribute("status", string(status)), nil
	}

	packet.Status = status
	if _, err := recoveryStates.Update(deps.Storage, packet.RecoveryAddr, func(cur []IBCTransfer, _ bool) ([]IBCTransfer, error) {
		return append(cur, packet), nil
	}); err != nil {
		return nil, err
	}

	Logger.Info().
		Str("channel", key.Channel).
		Uint64("sequence", key.Sequence).
		Str("status", string(status)).
		Str("recovery_addr", packet.RecoveryAddr).
		Msg("packet funds made recoverable")
	return res.
		AddAttribute("status", string(status)).
		AddAttribute("recovery_addr", packet.RecoveryAddr), nil
}
