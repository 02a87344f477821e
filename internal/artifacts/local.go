package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalDir serves artifacts produced by the local build toolchain: one
// hardhat-style <Name>.json file per contract. Files are parsed on first
// lookup and cached for the rest of the run.
type LocalDir struct {
	dir    string
	loaded map[ContractName]Artifact
}

type localArtifactFile struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode string          `json:"bytecode"`
}

func NewLocalDir(dir string) *LocalDir {
	return &LocalDir{
		dir:    dir,
		loaded: make(map[ContractName]Artifact),
	}
}

func (l *LocalDir) Artifact(name ContractName) (Artifact, error) {
	if artifact, ok := l.loaded[name]; ok {
		return artifact, nil
	}

	path := filepath.Join(l.dir, string(name)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, fmt.Errorf("%w: %s in %s", ErrNotFound, name, l.dir)
		}
		return Artifact{}, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var file localArtifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Artifact{}, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}

	artifact, err := parseArtifact(string(name), file.ABI, file.Bytecode)
	if err != nil {
		return Artifact{}, err
	}

	l.loaded[name] = artifact
	return artifact, nil
}

// Version reads an optional version file written by the build; local builds
// without one are tagged "local".
func (l *LocalDir) Version() string {
	data, err := os.ReadFile(filepath.Join(l.dir, "version"))
	if err != nil {
		return "local"
	}
	if v := strings.TrimSpace(string(data)); v != "" {
		return v
	}
	return "local"
}
