package github

import (
	"errors"
	"os"
)

// ErrMissingConfig is returned when any GitHub environment variable is unset.
var ErrMissingConfig = errors.New("missing GitHub environment variables")

// Config identifies the repository and branch content is committed to.
type Config struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
}

// ConfigFromEnv reads GITHUB_TOKEN, GITHUB_OWNER, GITHUB_REPO and
// GITHUB_BRANCH. It is called per request so rotated values take effect
// without a restart.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Token:  os.Getenv("GITHUB_TOKEN"),
		Owner:  os.Getenv("GITHUB_OWNER"),
		Repo:   os.Getenv("GITHUB_REPO"),
		Branch: os.Getenv("GITHUB_BRANCH"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports ErrMissingConfig if any field is empty.
func (c Config) Validate() error {
	if c.Token == "" || c.Owner == "" || c.Repo == "" || c.Branch == "" {
		return ErrMissingConfig
	}
	return nil
}
