package dlp

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Pattern  string `yaml:"pattern" json:"pattern"`
	Mask     string `yaml:"mask" json:"mask"`
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Severity string `yaml:"severity" json:"severity"`
}

type RulesConfig struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

func LoadRules(path string) (RulesConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRules(), err
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return RulesConfig{}, err
	}

	if len(cfg.Rules) == 0 {
		return RulesConfig{}, errors.New("no DLP rules configured")
	}

	return cfg, nil
}

// DefaultRules covers the identifiers that routinely appear in pasted
// clinical notes.
func DefaultRules() RulesConfig {
	return RulesConfig{Rules: []Rule{
		{Name: "SSN", Type: "ssn", Pattern: `\b\d{3}-\d{2}-\d{4}\b`, Mask: "[SSN]", Enabled: true, Severity: "high"},
		{Name: "MRN", Type: "mrn", Pattern: `(?i)\bMRN\s*[:#]?\s*[A-Z0-9][A-Z0-9\-]{3,}`, Mask: "MRN: [MRN]", Enabled: true, Severity: "high"},
		{Name: "Patient name", Type: "name", Pattern: `(?im)^(\s*(?:patient(?:\s+name)?|name)\s*:\s*).+$`, Mask: "${1}[NAME]", Enabled: true, Severity: "high"},
		{Name: "DOB", Type: "dob", Pattern: `(?i)\b(?:DOB|date of birth)\s*:?\s*\d{1,2}/\d{1,2}/\d{2,4}\b`, Mask: "DOB: [DOB]", Enabled: true, Severity: "medium"},
		{Name: "Email", Type: "email", Pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, Mask: "[EMAIL]", Enabled: true, Severity: "medium"},
		{Name: "Phone", Type: "phone", Pattern: `\b\d{3}-\d{3}-\d{4}\b|\(\d{3}\)\s?\d{3}-\d{4}\b`, Mask: "[PHONE]", Enabled: true, Severity: "medium"},
	}}
}
