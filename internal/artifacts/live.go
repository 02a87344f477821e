package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
)

// LiveBundle is a pinned release bundle: every contract of a published build,
// keyed by name, plus the release version. The whole bundle is parsed once at
// startup; a name missing at lookup time is a configuration error.
type LiveBundle struct {
	version   string
	contracts map[ContractName]Artifact
}

type liveBundleFile struct {
	Version   string `json:"version"`
	Contracts map[string]struct {
		ABI      json.RawMessage `json:"abi"`
		Bytecode string          `json:"bytecode"`
	} `json:"contracts"`
}

// LoadLiveBundle reads and parses a release bundle file.
func LoadLiveBundle(path string) (*LiveBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read live bundle: %w", err)
	}

	var file liveBundleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse live bundle %s: %w", path, err)
	}
	if file.Version == "" {
		return nil, fmt.Errorf("live bundle %s has no version", path)
	}

	contracts := make(map[ContractName]Artifact, len(file.Contracts))
	for name, contract := range file.Contracts {
		artifact, err := parseArtifact(name, contract.ABI, contract.Bytecode)
		if err != nil {
			return nil, err
		}
		contracts[ContractName(name)] = artifact
	}

	return &LiveBundle{version: file.Version, contracts: contracts}, nil
}

func (b *LiveBundle) Artifact(name ContractName) (Artifact, error) {
	artifact, ok := b.contracts[name]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s in live bundle", ErrNotFound, name)
	}
	return artifact, nil
}

func (b *LiveBundle) Version() string {
	return b.version
}
