package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".quotebot"

// Paths holds resolved filesystem paths for quotebot data.
type Paths struct {
	Base        string // ~/.quotebot
	Config      string // ~/.quotebot/config.yaml
	Transcripts string // ~/.quotebot/transcripts
	Logs        string // ~/.quotebot/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If QUOTEBOT_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("QUOTEBOT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:        base,
		Config:      filepath.Join(base, "config.yaml"),
		Transcripts: filepath.Join(base, "transcripts"),
		Logs:        filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.Transcripts, p.Logs}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
