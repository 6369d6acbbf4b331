package affiliateswap_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-contracts/contracts/affiliateswap"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

type suite struct {
	h         *host.Host
	addr      string
	router    string
	affiliate string
	alice     string
	bob       string
}

func setupAffiliateSwap(t *testing.T, bps uint64) *suite {
	t.Helper()
	s := &suite{
		h:         host.NewHost(storage.NewMemStore(), host.DefaultConfig()),
		router:    host.ContractAddress("osmo", "swaprouter"),
		affiliate: host.MockAddress("osmo", "affiliate"),
		alice:     host.MockAddress("osmo", "alice"),
		bob:       host.MockAddress("osmo", "bob"),
	}
	msg, err := json.Marshal(affiliateswap.InstantiateMsg{
		SwapContract:  s.router,
		AffiliateAddr: s.affiliate,
		AffiliateBps:  bps,
	})
	assert.NoError(t, err)
	s.addr, _, err = s.h.Instantiate(context.Background(), "affiliate-swap", affiliateswap.New(), s.alice, nil, msg)
	assert.NoError(t, err)

	assert.NoError(t, s.h.Bank().Mint(s.alice, types.NewCoin("uosmo", 1_000_000)))
	assert.NoError(t, s.h.Bank().Mint(s.bob, types.NewCoin("uosmo", 1_000_000)))
	return s
}

func swapMsg(amount uint64) affiliateswap.ExecuteMsg {
	return affiliateswap.ExecuteMsg{SwapWithFee: &affiliateswap.SwapWithFeeMsg{
		Routes: []affiliateswap.SwapRoute{
			{PoolID: 1, TokenOutDenom: "uion"},
			{PoolID: 2, TokenOutDenom: "uatom"},
		},
		TokenIn:           types.NewCoin("uosmo", amount),
		TokenOutMinAmount: sdkmath.NewUint(1),
	}}
}

func (s *suite) swap(t *testing.T, sender string, msg affiliateswap.ExecuteMsg, funds types.Coins) (*types.Response, error) {
	t.Helper()
	raw, err := json.Marshal(msg)
	assert.NoError(t, err)
	return s.h.Execute(context.Background(), s.addr, sender, funds, raw)
}

func (s *suite) reply(t *testing.T, id uint64, data string) (*types.Response, error) {
	t.Helper()
	return s.h.Reply(context.Background(), s.addr, types.Reply{
		ID:     id,
		Result: types.SubMsgResult{Ok: &types.SubMsgResponse{Data: []byte(data)}},
	})
}

func (s *suite) pending(t *testing.T) *affiliateswap.PendingSwap {
	t.Helper()
	raw, err := s.h.Query(context.Background(), s.addr, []byte(`{"pending_swap":{}}`))
	assert.NoError(t, err)
	var pending *affiliateswap.PendingSwap
	assert.NoError(t, json.Unmarshal(raw, &pending))
	return pending
}

func sends(res *types.Response) map[string]string {
	out := make(map[string]string)
	for _, m := range res.Messages {
		if m.Msg.Bank == nil || m.Msg.Bank.Send == nil {
			continue
		}
		send := m.Msg.Bank.Send
		out[send.ToAddress] = send.Amount[0].String()
	}
	return out
}

func TestInstantiate_Invalid(t *testing.T) {
	h := host.NewHost(storage.NewMemStore(), host.DefaultConfig())
	sender := host.MockAddress("osmo", "creator")

	tests := []struct {
		name string
		msg  affiliateswap.InstantiateMsg
	}{
		{"bps over 100%", affiliateswap.InstantiateMsg{
			SwapContract:  host.ContractAddress("osmo", "swaprouter"),
			AffiliateAddr: host.MockAddress("osmo", "affiliate"),
			AffiliateBps:  10_001,
		}},
		{"foreign affiliate", affiliateswap.InstantiateMsg{
			SwapContract:  host.ContractAddress("osmo", "swaprouter"),
			AffiliateAddr: host.MockAddress("cosmos", "affiliate"),
			AffiliateBps:  100,
		}},
		{"missing swap contract", affiliateswap.InstantiateMsg{
			AffiliateAddr: host.MockAddress("osmo", "affiliate"),
			AffiliateBps:  100,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.msg)
			assert.NoError(t, err)
			_, _, err = h.Instantiate(context.Background(), tt.name, affiliateswap.New(), sender, nil, raw)
			assert.True(t, errors.Is(err, affiliateswap.ErrInvalidInput))
		})
	}
}

func TestSwapWithFee_RequiresExactFunds(t *testing.T) {
	s := setupAffiliateSwap(t, 250)

	tests := []struct {
		name  string
		funds types.Coins
	}{
		{"no funds", nil},
		{"less", types.Coins{types.NewCoin("uosmo", 999)}},
		{"more", types.Coins{types.NewCoin("uosmo", 1001)}},
		{"other denom", types.Coins{types.NewCoin("uion", 1000)}},
		{"extra coin", types.Coins{types.NewCoin("uosmo", 1000), types.NewCoin("uion", 1)}},
	}
	assert.NoError(t, s.h.Bank().Mint(s.alice, types.NewCoin("uion", 10_000)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.swap(t, s.alice, swapMsg(1000), tt.funds)
			assert.True(t, errors.Is(err, affiliateswap.ErrInsufficientFunds))
		})
	}
	assert.True(t, s.pending(t) == nil)
}

func TestSwapWithFee_SplitsOutput(t *testing.T) {
	s := setupAffiliateSwap(t, 250)

	res, err := s.swap(t, s.alice, swapMsg(1000), types.Coins{types.NewCoin("uosmo", 1000)})
	assert.NoError(t, err)
	assert.Equal(t, len(res.Messages), 1)
	sub := res.Messages[0]
	assert.Equal(t, sub.ID, affiliateswap.SwapReplyID)
	assert.Equal(t, sub.ReplyOn, types.ReplySuccess)
	assert.Equal(t, sub.Msg.Wasm.Execute.ContractAddr, s.router)
	assert.Equal(t, sub.Msg.Wasm.Execute.Funds[0].String(), "1000uosmo")

	pending := s.pending(t)
	assert.NotNil(t, pending)
	assert.Equal(t, pending.OriginalSender, s.alice)

	res, err = s.reply(t, affiliateswap.SwapReplyID, `{"amount_out":"1000"}`)
	assert.NoError(t, err)
	assert.Equal(t, len(res.Messages), 2)
	paid := sends(res)
	assert.Equal(t, paid[s.affiliate], "25uatom")
	assert.Equal(t, paid[s.alice], "975uatom")
	assert.True(t, s.pending(t) == nil)

	_, err = s.reply(t, affiliateswap.SwapReplyID, `{"amount_out":"1000"}`)
	assert.True(t, errors.Is(err, affiliateswap.ErrNotFound))
}

func TestHandleSwapReply_Split(t *testing.T) {
	tests := []struct {
		name      string
		bps       uint64
		data      string
		affiliate string
		user      string
	}{
		{"2.5%", 250, `{"amount_out":"1000"}`, "25uatom", "975uatom"},
		{"truncates", 250, `{"amount_out":"39"}`, "", "39uatom"},
		{"token_out_amount", 100, `{"token_out_amount":"12345"}`, "123uatom", "12222uatom"},
		{"no fee", 0, `{"amount_out":"500"}`, "", "500uatom"},
		{"all fee", 10_000, `{"amount_out":"500"}`, "500uatom", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupAffiliateSwap(t, tt.bps)
			_, err := s.swap(t, s.alice, swapMsg(1000), types.Coins{types.NewCoin("uosmo", 1000)})
			assert.NoError(t, err)

			res, err := s.reply(t, affiliateswap.SwapReplyID, tt.data)
			assert.NoError(t, err)
			paid := sends(res)
			assert.Equal(t, paid[s.affiliate], tt.affiliate)
			assert.Equal(t, paid[s.alice], tt.user)
			assert.Equal(t, len(res.Messages), len(paid))
		})
	}
}

func TestHandleSwapReply_Errors(t *testing.T) {
	s := setupAffiliateSwap(t, 250)
	_, err := s.swap(t, s.alice, swapMsg(1000), types.Coins{types.NewCoin("uosmo", 1000)})
	assert.NoError(t, err)

	_, err = s.reply(t, 7, `{"amount_out":"1000"}`)
	assert.True(t, errors.Is(err, affiliateswap.ErrUnknownReply))

	_, err = s.reply(t, affiliateswap.SwapReplyID, `{"unexpected":"1000"}`)
	assert.True(t, errors.Is(err, affiliateswap.ErrExternalCallFailed))

	// a failed reply leaves the pending swap in place
	assert.NotNil(t, s.pending(t))
}

// The pending swap lives under a single reply id, so a second swap before the
// first reply takes over the payout.
func TestSwapWithFee_SecondSwapOverwritesPending(t *testing.T) {
	s := setupAffiliateSwap(t, 250)

	_, err := s.swap(t, s.alice, swapMsg(1000), types.Coins{types.NewCoin("uosmo", 1000)})
	assert.NoError(t, err)
	_, err = s.swap(t, s.bob, swapMsg(2000), types.Coins{types.NewCoin("uosmo", 2000)})
	assert.NoError(t, err)

	res, err := s.reply(t, affiliateswap.SwapReplyID, `{"amount_out":"1000"}`)
	assert.NoError(t, err)
	paid := sends(res)
	assert.Equal(t, paid[s.bob], "975uatom")
	assert.Equal(t, paid[s.alice], "")
}
