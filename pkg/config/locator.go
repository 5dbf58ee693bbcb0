package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Candidate filenames for discovered configuration and secrets files.
// Both hyphenated and underscored spellings are accepted.
var (
	configFilenames  = []string{"mcp-agent.config.yaml", "mcp_agent.config.yaml"}
	secretsFilenames = []string{"mcp-agent.secrets.yaml", "mcp_agent.secrets.yaml"}
)

// Locator discovers configuration files by walking upward from a start
// directory to the filesystem root. Absence of a file is a normal outcome,
// never an error.
type Locator struct {
	fs    afero.Fs
	start string
}

// NewLocator returns a Locator rooted at the current working directory on
// the OS filesystem.
func NewLocator() *Locator {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Locator{fs: afero.NewOsFs(), start: cwd}
}

// NewLocatorAt returns a Locator searching the given filesystem from the
// given start directory. Tests use this with an in-memory filesystem.
func NewLocatorAt(fsys afero.Fs, start string) *Locator {
	return &Locator{fs: fsys, start: start}
}

// FindConfig returns the nearest config file, searching the start directory
// and each parent up to and including the root. The boolean reports whether
// a file was found.
func (l *Locator) FindConfig() (string, bool) {
	return l.findFirst(configFilenames)
}

// FindSecrets returns the nearest secrets file, using the same search rule
// as FindConfig. The two searches are independent; the secrets file need
// not sit beside the config file.
func (l *Locator) FindSecrets() (string, bool) {
	return l.findFirst(secretsFilenames)
}

// findFirst tests candidates in order at each directory level and returns
// the first existing match. The walk terminates at the directory whose
// parent equals itself.
func (l *Locator) findFirst(candidates []string) (string, bool) {
	dir := l.start
	for {
		for _, name := range candidates {
			path := filepath.Join(dir, name)
			if ok, err := afero.Exists(l.fs, path); err == nil && ok {
				return path, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
