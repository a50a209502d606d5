package client

import (
	"os"
	"path/filepath"
)

// DirSink saves export downloads into a directory, creating it on demand.
// It is the SDK's stand-in for the browser's triggered file download.
type DirSink struct {
	Dir string
}

// Save writes the download to Dir/Filename.
func (s DirSink) Save(d Download) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, d.Filename), d.Data, 0o644)
}
