package crosschainswaps

import (
	"encoding/json"
	"fmt"

	"github.com/Cogwheel-Validator/spectra-contracts/contracts/registry"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

func checkIsGovernor(deps host.Deps, sender string) (Config, error) {
	cfg, err := config.Load(deps.Storage)
	if err != nil {
		return Config{}, err
	}
	if cfg.Governor != sender {
		return Config{}, fmt.Errorf("%s is not the governor: %w", sender, ErrUnauthorized)
	}
	return cfg, nil
}

// validateReceiver resolves the channel that leads from this chain to the
// receiver's chain, keyed by the receiver's bech32 prefix.
func validateReceiver(deps host.Deps, env types.Env, cfg Config, receiver string) (string, error) {
	client, err := registry.NewClient(deps, cfg.RegistryContract)
	if err != nil {
		return "", err
	}
	localPrefix, err := host.Bech32Prefix(env.Contract.Address)
	if err != nil {
		return "", err
	}
	localChain, err := client.ChainName(localPrefix)
	if err != nil {
		return "", fmt.Errorf("resolving local chain: %w: %w", ErrExternalCallFailed, err)
	}
	channel, err := client.ReceiverChannel(localChain, receiver)
	if err != nil {
		return "", fmt.Errorf("receiver %s: %w: %w", receiver, ErrInvalidReceiver, err)
	}
	return channel, nil
}

// ensureKeyMissing checks that memo is a JSON object that does not set key.
func ensureKeyMissing(memo json.RawMessage, key string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(memo, &obj); err != nil || obj == nil {
		return fmt.Errorf("memo must be a json object: %w", ErrInvalidMemo)
	}
	if _, ok := obj[key]; ok {
		return fmt.Errorf("memo may not contain %q: %w", key, ErrInvalidMemo)
	}
	return nil
}

// buildMemo adds the callback key pointing at contract to the user's memo.
func buildMemo(next json.RawMessage, contract string) (string, error) {
	obj := make(map[string]json.RawMessage)
	if len(next) > 0 {
		if err := json.Unmarshal(next, &obj); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidMemo, err)
		}
	}
	callback, err := json.Marshal(contract)
	if err != nil {
		return "", err
	}
	obj[CallbackKey] = callback
	memo, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(memo), nil
}
