package host_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

var errBoom = errors.New("boom")

// tally counts execute calls and fails after writing when asked to.
type tally struct{}

var count = storage.NewItem[int]("count")

type tallyMsg struct {
	FailAfterWrite bool `json:"fail_after_write"`
}

func (tally) Instantiate(deps host.Deps, _ types.Env, _ types.MessageInfo, _ []byte) (*types.Response, error) {
	return types.NewResponse(), count.Save(deps.Storage, 0)
}

func (tally) Execute(deps host.Deps, env types.Env, info types.MessageInfo, msg []byte) (*types.Response, error) {
	var m tallyMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, err
	}
	if _, err := count.Update(deps.Storage, func(c int, _ bool) (int, error) { return c + 1, nil }); err != nil {
		return nil, err
	}
	if m.FailAfterWrite {
		return nil, errBoom
	}
	return types.NewResponse().AddAttribute("sender", info.Sender), nil
}

func (tally) Query(deps host.Deps, _ types.Env, _ []byte) ([]byte, error) {
	c, err := count.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	return json.Marshal(c)
}

func setupHost(t *testing.T) (*host.Host, string) {
	t.Helper()
	h := host.NewHost(storage.NewMemStore(), host.DefaultConfig(),
		host.WithMetrics(host.NewMetrics(prometheus.NewRegistry())))
	addr, _, err := h.Instantiate(context.Background(), "tally", tally{}, host.MockAddress("osmo", "creator"), nil, []byte(`{}`))
	assert.NoError(t, err)
	return h, addr
}

func queryCount(t *testing.T, h *host.Host, addr string) int {
	t.Helper()
	raw, err := h.Query(context.Background(), addr, []byte(`{}`))
	assert.NoError(t, err)
	var c int
	assert.NoError(t, json.Unmarshal(raw, &c))
	return c
}

func TestHost_CommitsOnSuccessOnly(t *testing.T) {
	h, addr := setupHost(t)
	sender := host.MockAddress("osmo", "alice")

	_, err := h.Execute(context.Background(), addr, sender, nil, []byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, queryCount(t, h, addr), 1)

	_, err = h.Execute(context.Background(), addr, sender, nil, []byte(`{"fail_after_write":true}`))
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, queryCount(t, h, addr), 1)
}

func TestHost_FundsMoveAndRollBack(t *testing.T) {
	h, addr := setupHost(t)
	sender := host.MockAddress("osmo", "alice")
	assert.NoError(t, h.Bank().Mint(sender, types.NewCoin("uosmo", 100)))

	_, err := h.Execute(context.Background(), addr, sender, types.Coins{types.NewCoin("uosmo", 40)}, []byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, h.Bank().Balance(addr, "uosmo").Amount.String(), "40")

	_, err = h.Execute(context.Background(), addr, sender, types.Coins{types.NewCoin("uosmo", 10)}, []byte(`{"fail_after_write":true}`))
	assert.Error(t, err)
	assert.Equal(t, h.Bank().Balance(sender, "uosmo").Amount.String(), "60")

	_, err = h.Execute(context.Background(), addr, sender, types.Coins{types.NewCoin("uosmo", 1000)}, []byte(`{}`))
	assert.True(t, errors.Is(err, host.ErrInsufficientFunds))
	assert.Equal(t, h.Bank().Supply("uosmo").Amount.String(), "100")
}

func TestHost_SudoUnsupported(t *testing.T) {
	h, addr := setupHost(t)
	_, err := h.Sudo(context.Background(), addr, []byte(`{}`))
	assert.True(t, errors.Is(err, host.ErrUnsupported))

	_, err = h.Execute(context.Background(), "osmo1unknown", "", nil, nil)
	assert.True(t, errors.Is(err, host.ErrUnknownContract))
}

func TestHost_TransactionIndexAndBlocks(t *testing.T) {
	h, _ := setupHost(t)
	height, ts := h.Block()
	h.NextBlock()
	nextHeight, nextTs := h.Block()
	assert.Equal(t, nextHeight, height+1)
	assert.Equal(t, nextTs.Seconds(), ts.Seconds()+6)
}

func TestBech32API(t *testing.T) {
	api := host.Bech32API{Prefix: "osmo"}
	assert.NoError(t, api.AddrValidate(host.MockAddress("osmo", "alice")))
	assert.NoError(t, api.AddrValidate(host.ContractAddress("osmo", "registry")))
	assert.Error(t, api.AddrValidate(host.MockAddress("cosmos", "alice")))
	assert.Error(t, api.AddrValidate("osmo1notbech32"))
	assert.Error(t, api.AddrValidate(""))

	prefix, err := host.Bech32Prefix(host.MockAddress("juno", "bob"))
	assert.NoError(t, err)
	assert.Equal(t, prefix, "juno")
}

func TestHost_AttachResumesStoredState(t *testing.T) {
	ctx := context.Background()
	db := storage.NewMemStore()
	h := host.NewHost(db, host.DefaultConfig())
	addr, _, err := h.Instantiate(ctx, "tally", tally{}, host.MockAddress("osmo", "creator"), nil, []byte(`{}`))
	assert.NoError(t, err)
	_, err = h.Execute(ctx, addr, host.MockAddress("osmo", "alice"), nil, []byte(`{}`))
	assert.NoError(t, err)

	reopened := host.NewHost(db, host.DefaultConfig())
	attached, err := reopened.Attach("tally", tally{})
	assert.NoError(t, err)
	assert.Equal(t, attached, addr)
	assert.Equal(t, queryCount(t, reopened, addr), 1)

	_, err = reopened.Execute(ctx, addr, host.MockAddress("osmo", "alice"), nil, []byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, queryCount(t, reopened, addr), 2)

	_, err = reopened.Attach("tally", tally{})
	assert.True(t, errors.Is(err, host.ErrDuplicateLabel))
}

// payer answers every execute with a bank send of the funds it received.
type payer struct{ tally }

func (payer) Execute(_ host.Deps, _ types.Env, info types.MessageInfo, _ []byte) (*types.Response, error) {
	return types.NewResponse().AddMessage(types.NewBankSend(info.Sender, info.Funds...)), nil
}

func TestHost_ResponseMessagesAreNotSettled(t *testing.T) {
	ctx := context.Background()
	h := host.NewHost(storage.NewMemStore(), host.DefaultConfig())
	addr, _, err := h.Instantiate(ctx, "payer", payer{}, host.MockAddress("osmo", "creator"), nil, []byte(`{}`))
	assert.NoError(t, err)
	alice := host.MockAddress("osmo", "alice")
	assert.NoError(t, h.Bank().Mint(alice, types.NewCoin("uosmo", 100)))

	res, err := h.Execute(ctx, addr, alice, types.Coins{types.NewCoin("uosmo", 30)}, []byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, len(res.Messages), 1)
	assert.Equal(t, res.Messages[0].Msg.Bank.Send.ToAddress, alice)

	assert.Equal(t, h.Bank().Balance(alice, "uosmo").Amount.String(), "70")
	assert.Equal(t, h.Bank().Balance(addr, "uosmo").Amount.String(), "30")
}
