package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadSourcesFile reads a standalone source list from a YAML file. It lets
// operators keep the (long) source roster out of the main config.
func LoadSourcesFile(path string) ([]SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read sources file %s", path)
	}

	// The YAML has a top-level "sources" key
	var wrapper struct {
		Sources []SourceConfig `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "config: parse sources file")
	}

	return wrapper.Sources, nil
}

// EffectiveSources resolves the source roster: the sources file, when
// configured, replaces the inline list.
func (c *Config) EffectiveSources() ([]SourceConfig, error) {
	if c.SourcesFile == "" {
		return c.Sources, nil
	}
	return LoadSourcesFile(c.SourcesFile)
}
