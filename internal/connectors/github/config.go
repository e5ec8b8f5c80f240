package github

import (
	"fmt"
	"strings"
)

// Config identifies the repository location to ingest.
type Config struct {
	Owner string
	Repo  string

	// Path limits ingestion to a directory. Empty means the whole repository.
	Path string

	// Ref is a branch, tag or commit. Empty means the default branch.
	Ref string

	// Token is an optional access token.
	Token string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string

	// RequestsPerSecond paces API calls (default: ProactiveRate).
	RequestsPerSecond float64
}

// ParseRepoSpec parses owner/repo[/path][@ref].
func ParseRepoSpec(spec string) (*Config, error) {
	spec = strings.TrimSpace(spec)
	spec = strings.TrimPrefix(spec, "https://github.com/")
	spec = strings.TrimPrefix(spec, "github.com/")

	cfg := &Config{}
	if i := strings.LastIndex(spec, "@"); i >= 0 {
		cfg.Ref = spec[i+1:]
		spec = spec[:i]
		if cfg.Ref == "" {
			return nil, fmt.Errorf("%w: empty ref", ErrInvalidRepoSpec)
		}
	}

	parts := strings.SplitN(strings.Trim(spec, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: %q, want owner/repo[/path][@ref]", ErrInvalidRepoSpec, spec)
	}
	cfg.Owner = parts[0]
	cfg.Repo = strings.TrimSuffix(parts[1], ".git")
	if len(parts) == 3 {
		cfg.Path = strings.Trim(parts[2], "/")
	}
	return cfg, nil
}

// String returns the config in owner/repo[/path][@ref] form.
func (c *Config) String() string {
	s := c.Owner + "/" + c.Repo
	if c.Path != "" {
		s += "/" + c.Path
	}
	if c.Ref != "" {
		s += "@" + c.Ref
	}
	return s
}
