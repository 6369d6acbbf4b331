package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

var Logger zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	Logger = zerolog.New(out).With().Timestamp().Str("component", "wasm-host").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	Logger = l.With().Str("component", "wasm-host").Logger()
}

var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrUnsupported     = errors.New("entry point not supported")
	ErrDuplicateLabel  = errors.New("contract label already registered")
)

// Config holds the chain parameters the host simulates.
type Config struct {
	ChainID      string
	Bech32Prefix string
	BlockTime    time.Duration
	GenesisTime  time.Time
}

func DefaultConfig() Config {
	return Config{
		ChainID:      "osmosis-1",
		Bech32Prefix: "osmo",
		BlockTime:    6 * time.Second,
		GenesisTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type instance struct {
	address  string
	label    string
	contract Contract
	store    *dbm.PrefixDB
}

// Host owns every registered contract instance and serializes calls into them:
// exactly one call runs to completion (commit or discard) before the next.
//
// Messages a contract returns in its Response are handed back to the caller
// and never dispatched. Bank sends, wasm executes and IBC transfers they carry
// do not move funds in the host Bank, so balances only reflect funds attached
// to calls and coins minted directly.
type Host struct {
	mu      sync.Mutex
	db      dbm.DB
	api     Bech32API
	chainID string

	height    uint64
	blockTime types.Timestamp
	interval  time.Duration
	txIndex   uint32

	contracts map[string]*instance
	labels    map[string]string

	bank    *Bank
	metrics *Metrics
	tracer  trace.Tracer
}

type Option func(*Host)

// WithMetrics records invocation metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(h *Host) { h.metrics = m }
}

func NewHost(db dbm.DB, cfg Config, opts ...Option) *Host {
	h := &Host{
		db:        db,
		api:       Bech32API{Prefix: cfg.Bech32Prefix},
		chainID:   cfg.ChainID,
		height:    1,
		blockTime: types.FromTime(cfg.GenesisTime),
		interval:  cfg.BlockTime,
		contracts: make(map[string]*instance),
		labels:    make(map[string]string),
		bank:      NewBank(),
		tracer:    otel.Tracer("github.com/Cogwheel-Validator/spectra-contracts/wasm/host"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) Bank() *Bank { return h.bank }

func (h *Host) API() API { return h.api }

// Prefix returns the bech32 prefix of this chain.
func (h *Host) Prefix() string { return h.api.Prefix }

// Address returns the bech32 address a label was instantiated under.
func (h *Host) Address(label string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	addr, ok := h.labels[label]
	return addr, ok
}

// Contracts lists the registered contract labels in order.
func (h *Host) Contracts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	labels := make([]string, 0, len(h.labels))
	for l := range h.labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Block returns the current block height and time.
func (h *Host) Block() (uint64, types.Timestamp) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.height, h.blockTime
}

// NextBlock advances the height by one and the clock by the block interval.
func (h *Host) NextBlock() {
	h.AdvanceTime(h.interval)
}

// AdvanceTime moves to the next block, d later than the current one.
func (h *Host) AdvanceTime(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.height++
	h.blockTime += types.Timestamp(d)
	h.txIndex = 0
}

func (h *Host) env(inst *instance) types.Env {
	env := types.Env{
		Block: types.BlockInfo{
			Height:  h.height,
			Time:    h.blockTime,
			ChainID: h.chainID,
		},
		Transaction: &types.TransactionInfo{Index: h.txIndex},
		Contract:    types.ContractInfo{Address: inst.address},
	}
	h.txIndex++
	return env
}

func (h *Host) lookup(addr string) (*instance, error) {
	inst, ok := h.contracts[addr]
	if !ok {
		return nil, fmt.Errorf("%s: %w", addr, ErrUnknownContract)
	}
	return inst, nil
}

// Instantiate registers a new contract instance under label and runs its instantiate entry point.
func (h *Host) Instantiate(
	ctx context.Context,
	label string,
	contract Contract,
	sender string,
	funds types.Coins,
	msg []byte,
) (string, *types.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.labels[label]; exists {
		return "", nil, fmt.Errorf("%s: %w", label, ErrDuplicateLabel)
	}

	addr := ContractAddress(h.api.Prefix, label)
	inst := &instance{
		address:  addr,
		label:    label,
		contract: contract,
		store:    storage.PrefixStore(h.db, []byte(addr+"/")),
	}
	info := types.MessageInfo{Sender: sender, Funds: funds}

	res, err := h.run(ctx, inst, "instantiate", func(deps Deps, env types.Env) (*types.Response, error) {
		if err := h.bank.Send(sender, addr, funds); err != nil {
			return nil, err
		}
		return contract.Instantiate(deps, env, info, msg)
	})
	if err != nil {
		return "", nil, err
	}

	h.contracts[addr] = inst
	h.labels[label] = addr
	return addr, res, nil
}

// Attach registers contract under label over the state already stored for that
// label's address. Instantiate is not run, so a host opened on an existing
// database picks up where the previous one stopped.
func (h *Host) Attach(label string, contract Contract) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.labels[label]; exists {
		return "", fmt.Errorf("%s: %w", label, ErrDuplicateLabel)
	}
	addr := ContractAddress(h.api.Prefix, label)
	h.contracts[addr] = &instance{
		address:  addr,
		label:    label,
		contract: contract,
		store:    storage.PrefixStore(h.db, []byte(addr+"/")),
	}
	h.labels[label] = addr
	return addr, nil
}

// Execute runs a user-triggered state change. The attached funds move from the
// sender to the contract before the contract runs.
func (h *Host) Execute(ctx context.Context, contract, sender string, funds types.Coins, msg []byte) (*types.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	inst, err := h.lookup(contract)
	if err != nil {
		return nil, err
	}
	info := types.MessageInfo{Sender: sender, Funds: funds}
	return h.run(ctx, inst, "execute", func(deps Deps, env types.Env) (*types.Response, error) {
		if err := h.bank.Send(sender, contract, funds); err != nil {
			return nil, err
		}
		return inst.contract.Execute(deps, env, info, msg)
	})
}

// Sudo runs a privileged chain callback. Only the chain reaches this entry point.
func (h *Host) Sudo(ctx context.Context, contract string, msg []byte) (*types.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	inst, err := h.lookup(contract)
	if err != nil {
		return nil, err
	}
	sudoer, ok := inst.contract.(SudoContract)
	if !ok {
		return nil, fmt.Errorf("sudo on %s: %w", inst.label, ErrUnsupported)
	}
	return h.run(ctx, inst, "sudo", func(deps Deps, env types.Env) (*types.Response, error) {
		return sudoer.Sudo(deps, env, msg)
	})
}

// Reply delivers the result of a sub-message back to the contract that dispatched it.
func (h *Host) Reply(ctx context.Context, contract string, reply types.Reply) (*types.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	inst, err := h.lookup(contract)
	if err != nil {
		return nil, err
	}
	replier, ok := inst.contract.(ReplyContract)
	if !ok {
		return nil, fmt.Errorf("reply on %s: %w", inst.label, ErrUnsupported)
	}
	return h.run(ctx, inst, "reply", func(deps Deps, env types.Env) (*types.Response, error) {
		return replier.Reply(deps, env, reply)
	})
}

// Query runs a read-only lookup; any write attempted by the contract is dropped.
func (h *Host) Query(ctx context.Context, contract string, msg []byte) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queryLocked(ctx, contract, msg)
}

func (h *Host) queryLocked(ctx context.Context, contract string, msg []byte) ([]byte, error) {
	inst, err := h.lookup(contract)
	if err != nil {
		return nil, err
	}

	_, span := h.tracer.Start(ctx, "wasm.query", trace.WithAttributes(
		attribute.String("contract", inst.label),
	))
	defer span.End()

	start := time.Now()
	cache := storage.NewCacheStore(inst.store)
	env := types.Env{
		Block:    types.BlockInfo{Height: h.height, Time: h.blockTime, ChainID: h.chainID},
		Contract: types.ContractInfo{Address: inst.address},
	}
	out, err := safeQuery(func() ([]byte, error) {
		return inst.contract.Query(h.deps(ctx, cache), env, msg)
	})
	cache.Discard()
	h.metrics.observe(inst.label, "query", err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (h *Host) deps(ctx context.Context, store storage.KVStore) Deps {
	return Deps{
		Storage: store,
		Querier: &hostQuerier{host: h, ctx: ctx},
		API:     h.api,
	}
}

// run executes fn over a write-buffering view of the instance store and
// commits the buffered writes only when fn succeeds.
func (h *Host) run(
	ctx context.Context,
	inst *instance,
	entry string,
	fn func(deps Deps, env types.Env) (*types.Response, error),
) (*types.Response, error) {
	ctx, span := h.tracer.Start(ctx, "wasm."+entry, trace.WithAttributes(
		attribute.String("contract", inst.label),
		attribute.String("address", inst.address),
	))
	defer span.End()

	start := time.Now()
	cache := storage.NewCacheStore(inst.store)
	env := h.env(inst)

	bankSnapshot := h.bank.snapshot()
	res, err := safeCall(func() (*types.Response, error) {
		return fn(h.deps(ctx, cache), env)
	})
	if err == nil {
		err = cache.Write()
	}
	if err != nil {
		cache.Discard()
		h.bank.restore(bankSnapshot)
	}

	took := time.Since(start)
	h.metrics.observe(inst.label, entry, err, took)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		Logger.Warn().
			Str("contract", inst.label).
			Str("entry", entry).
			Uint64("height", env.Block.Height).
			Dur("duration", took).
			Err(err).
			Msg("contract call rejected")
		return nil, err
	}

	Logger.Debug().
		Str("contract", inst.label).
		Str("entry", entry).
		Uint64("height", env.Block.Height).
		Int("messages", len(res.Messages)).
		Int("attributes", len(res.Attributes)).
		Dur("duration", took).
		Msg("contract call committed")
	return res, nil
}

func safeCall(fn func() (*types.Response, error)) (res *types.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("contract panicked: %v", r)
		}
	}()
	res, err = fn()
	if err == nil && res == nil {
		res = types.NewResponse()
	}
	return res, err
}

func safeQuery(fn func() ([]byte, error)) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("contract panicked: %v", r)
		}
	}()
	return fn()
}

type hostQuerier struct {
	host *Host
	ctx  context.Context
}

// QuerySmart is called while the host lock is already held by the calling entry point.
func (q *hostQuerier) QuerySmart(contract string, msg []byte) ([]byte, error) {
	return q.host.queryLocked(q.ctx, contract, msg)
}

func (q *hostQuerier) QuerySupply(denom string) (types.Coin, error) {
	return q.host.bank.Supply(denom), nil
}

func (q *hostQuerier) QueryBalance(addr, denom string) (types.Coin, error) {
	return q.host.bank.Balance(addr, denom), nil
}
