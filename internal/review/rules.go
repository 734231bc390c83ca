package review

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules represents a rules pack loaded from --rules.
type Rules struct {
	Focus             []string          `yaml:"focus,omitempty"`
	SeverityOverrides map[string]string `yaml:"severityOverrides,omitempty"`
	Required          []RequiredCheck   `yaml:"required,omitempty"`
}

// RequiredCheck is a policy check that should always be enforced.
type RequiredCheck struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// LoadRules loads a rules file from disk. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	for typ, sev := range rules.SeverityOverrides {
		if SeverityRank(NormalizeSeverity(sev)) == 0 {
			return nil, fmt.Errorf("rules file: override for %q has unknown severity %q", typ, sev)
		}
	}
	return &rules, nil
}

// PromptSection returns additional prompt instructions derived from rules.
func (r *Rules) PromptSection() string {
	if r == nil {
		return ""
	}

	var b strings.Builder

	if len(r.Focus) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s. Prioritize findings in these areas.\n",
			strings.Join(r.Focus, ", "))
	}

	if len(r.SeverityOverrides) > 0 {
		b.WriteString("\nSeverity policy:\n")
		types := make([]string, 0, len(r.SeverityOverrides))
		for typ := range r.SeverityOverrides {
			types = append(types, typ)
		}
		slices.Sort(types)
		for _, typ := range types {
			fmt.Fprintf(&b, "- %s bugs should be rated as %s severity.\n", typ, r.SeverityOverrides[typ])
		}
	}

	if len(r.Required) > 0 {
		b.WriteString("\nRequired checks (always evaluate these):\n")
		for _, req := range r.Required {
			fmt.Fprintf(&b, "- [%s] %s\n", req.ID, req.Text)
		}
	}

	return b.String()
}

// ApplySeverityOverrides returns a copy of bugs with severities rewritten
// for every bug whose type has an override. Types match case-insensitively.
func (r *Rules) ApplySeverityOverrides(bugs []BugFinding) []BugFinding {
	if r == nil || len(r.SeverityOverrides) == 0 {
		return bugs
	}
	overrides := make(map[string]Severity, len(r.SeverityOverrides))
	for typ, sev := range r.SeverityOverrides {
		overrides[strings.ToLower(strings.TrimSpace(typ))] = NormalizeSeverity(sev)
	}
	out := slices.Clone(bugs)
	for i := range out {
		if sev, ok := overrides[strings.ToLower(strings.TrimSpace(out[i].Type))]; ok {
			out[i].Severity = sev
		}
	}
	return out
}
