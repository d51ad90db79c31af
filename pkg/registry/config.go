package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CallConfig is one read against a target: the 0x-hex call payload and the
// decimal precision the source reports the value at.
type CallConfig struct {
	CallData hexutil.Bytes `json:"callData"`
	Decimals uint          `json:"decimals"`
}

// AccountConfig groups the ordered reads against one target address.
type AccountConfig struct {
	Address common.Address `json:"address"`
	Calls   []CallConfig   `json:"calls"`
}

// Config is the JSON description of a full attestation setup: the registry
// inputs, the declared input/output split, the output scale exponents, and
// the instance offset into the public-input vector.
type Config struct {
	Accounts       []AccountConfig `json:"accounts"`
	InputCalls     int             `json:"inputCalls"`
	OutputCalls    int             `json:"outputCalls"`
	OutputScales   []uint          `json:"outputScales"`
	InstanceOffset int             `json:"instanceOffset"`
}

// LoadConfig reads and decodes a Config from path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &c, nil
}

// Registry builds the CallRegistry the config describes, applying the same
// construction checks as New.
func (c *Config) Registry() (*CallRegistry, error) {
	addresses := make([]common.Address, len(c.Accounts))
	payloads := make([][][]byte, len(c.Accounts))
	decimals := make([][]uint, len(c.Accounts))
	for i, acct := range c.Accounts {
		addresses[i] = acct.Address
		payloads[i] = make([][]byte, len(acct.Calls))
		decimals[i] = make([]uint, len(acct.Calls))
		for j, call := range acct.Calls {
			payloads[i][j] = call.CallData
			decimals[i][j] = call.Decimals
		}
	}
	return New(addresses, payloads, decimals, c.InputCalls, c.OutputCalls)
}

// ScaleTable builds the output scale table from the config's exponents.
func (c *Config) ScaleTable() (OutputScaleTable, error) {
	return NewOutputScaleTable(c.OutputScales)
}
