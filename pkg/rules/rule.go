package rules

import (
	"errors"
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

var Severities = map[Severity]bool{
	SeverityBlocker:  true,
	SeverityCritical: true,
	SeverityMajor:    true,
	SeverityMinor:    true,
	SeverityInfo:     true,
}

var (
	ErrEmptyKey        = errors.New("rule key is empty")
	ErrInvalidSeverity = errors.New("invalid severity")
)

// ParseSeverity accepts any letter case and returns the canonical form.
func ParseSeverity(s string) (Severity, error) {

	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !sev.Valid() {
		return sev, fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}

	return sev, nil
}

func (s Severity) Valid() bool {
	return Severities[s]
}

func (s Severity) String() string {
	return string(s)
}

type Param struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Rule is an activated rule as read from a quality profile.
type Rule struct {
	Key      string   `json:"key" yaml:"key"`
	Severity Severity `json:"severity" yaml:"severity"`
	Params   []Param  `json:"params" yaml:"params,omitempty"`
}

func NewRule(key string, severity Severity, params ...Param) *Rule {
	return &Rule{
		Key:      key,
		Severity: severity,
		Params:   append([]Param{}, params...),
	}
}

func (r *Rule) Validate() error {

	if len(r.Key) == 0 {
		return ErrEmptyKey
	}

	if !r.Severity.Valid() {
		return fmt.Errorf("%w: %q (rule %s)", ErrInvalidSeverity, r.Severity, r.Key)
	}

	return nil
}

func (r *Rule) GetParam(key string) (string, bool) {

	for _, p := range r.Params {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}
