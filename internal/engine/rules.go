package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRules reads a rule vocabulary from a YAML file. An empty path returns
// DefaultRules. A file that omits the version is rejected so stale rule files
// fail loudly instead of silently extracting nothing.
func LoadRules(path string) (RuleSet, error) {
	if path == "" {
		return DefaultRules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules file: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rules file: %w", err)
	}
	if rs.Version == "" {
		return RuleSet{}, fmt.Errorf("rules file %s: missing version", path)
	}
	return rs, nil
}
