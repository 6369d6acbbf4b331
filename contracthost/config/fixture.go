package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	getter "github.com/hashicorp/go-getter"
	"github.com/pelletier/go-toml/v2"
)

// FixtureLoader reads genesis fixtures from toml or json files.
type FixtureLoader struct{}

func NewFixtureLoader() *FixtureLoader {
	return &FixtureLoader{}
}

// LoadFromFile parses a fixture; files ending in .json are read as json, anything else as toml.
func (l *FixtureLoader) LoadFromFile(filePath string) (*Fixture, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var fixture Fixture
	if strings.HasSuffix(filePath, ".json") {
		if err := json.Unmarshal(data, &fixture); err != nil {
			return nil, fmt.Errorf("failed to parse JSON fixture: %w", err)
		}
	} else {
		if err := toml.Unmarshal(data, &fixture); err != nil {
			return nil, fmt.Errorf("failed to parse TOML fixture: %w", err)
		}
	}

	if err := l.validate(&fixture); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", filePath, err)
	}
	return &fixture, nil
}

func (l *FixtureLoader) validate(fixture *Fixture) error {
	labels := make(map[string]bool, len(fixture.Contracts))
	for i, c := range fixture.Contracts {
		if c.Label == "" {
			return fmt.Errorf("contract %d: label is required", i)
		}
		if labels[c.Label] {
			return fmt.Errorf("contract %d: duplicate label %s", i, c.Label)
		}
		labels[c.Label] = true
		if c.Kind == "" {
			return fmt.Errorf("contract %s: kind is required", c.Label)
		}
		if !json.Valid([]byte(c.Msg)) {
			return fmt.Errorf("contract %s: msg is not valid json", c.Label)
		}
		for j, e := range c.Executes {
			if !json.Valid([]byte(e)) {
				return fmt.Errorf("contract %s: execute %d is not valid json", c.Label, j)
			}
		}
	}
	if cr := fixture.ChainRegistry; cr != nil {
		if cr.Dir == "" {
			return fmt.Errorf("chain_registry: dir is required")
		}
		if len(cr.Chains) < 2 {
			return fmt.Errorf("chain_registry: at least two chains are required")
		}
		if !labels[cr.Registry] {
			return fmt.Errorf("chain_registry: registry %q is not a fixture contract", cr.Registry)
		}
	}
	for i, b := range fixture.Balances {
		if b.Address == "" || b.Denom == "" || b.Amount == "" {
			return fmt.Errorf("balance %d: address, denom and amount are required", i)
		}
	}
	return nil
}

// FetchFixture downloads a fixture file from src (any go-getter source: http,
// s3, git, a local path) into dstDir and returns the local path.
func FetchFixture(ctx context.Context, src, dstDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create fixture dir: %w", err)
	}
	name := filepath.Base(strings.SplitN(src, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "fixture.toml"
	}
	dst := filepath.Join(dstDir, name)

	pwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	client := getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("failed to fetch fixture from %s: %w", src, err)
	}
	return dst, nil
}
