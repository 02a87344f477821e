package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type (
	// summaryModel is the YAML shape consumed by frontends and bots: enough
	// to talk to the deployed system without parsing the full manifest.
	summaryModel struct {
		Network   string                     `yaml:"network"`
		ChainID   uint64                     `yaml:"chain-id"`
		RPCURL    string                     `yaml:"rpc-url"`
		Version   string                     `yaml:"version"`
		Contracts map[string]summaryContract `yaml:"contracts"`
	}

	summaryContract struct {
		Address string             `yaml:"address"`
		ABI     SingleQuotedString `yaml:"abi,omitempty"`
	}

	SingleQuotedString string
)

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}

// WriteSummary writes <baseDir>/<channel>/<network>.yaml next to the JSON
// manifest. abis maps contract name to raw ABI JSON; contracts without an
// entry are listed address-only.
func (w *Writer) WriteSummary(channel, network, rpcURL string, record *Record, abis map[string]string) (string, error) {
	contracts := make(map[string]summaryContract, len(record.Contracts))
	for name, contract := range record.Contracts {
		contracts[name] = summaryContract{
			Address: contract.Address,
			ABI:     SingleQuotedString(compactJSON(abis[name])),
		}
	}

	model := summaryModel{
		Network:   record.Network,
		ChainID:   record.ChainID,
		RPCURL:    rpcURL,
		Version:   record.Version,
		Contracts: contracts,
	}

	data, err := yaml.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("failed to marshal deployment summary: %w", err)
	}

	dir := filepath.Join(w.baseDir, channel)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create channel directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, network+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

func compactJSON(s string) string {
	if s == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
