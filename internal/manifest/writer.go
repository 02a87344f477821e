package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists deployment records under <baseDir>/<channel>/<network>.json.
// Channels are independent namespaces; writing is last-write-wins.
type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Persist writes the record as indented JSON, creating the channel directory
// if absent. Any prior file at the path is replaced. Returns the written path.
func (w *Writer) Persist(channel, network string, record *Record) (string, error) {
	dir := filepath.Join(w.baseDir, channel)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create channel directory %s: %w", dir, err)
	}

	content, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal deployment record: %w", err)
	}

	path := filepath.Join(dir, network+".json")
	if err := os.WriteFile(path, append(content, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
