package combiner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type ProfileReport struct {
	Key   string `yaml:"key"`
	Rules int    `yaml:"rules"`
	Pages int    `yaml:"pages"`
	Error string `yaml:"error,omitempty"`
}

type Failure struct {
	Source string `yaml:"source"`
	Rule   string `yaml:"rule"`
	Reason string `yaml:"reason"`
}

type Summary struct {
	RunID      string          `yaml:"run"`
	Target     string          `yaml:"target"`
	DryRun     bool            `yaml:"dryRun"`
	Strict     bool            `yaml:"strict"`
	Aborted    bool            `yaml:"aborted"`
	Profiles   []ProfileReport `yaml:"profiles"`
	Processed  int             `yaml:"processed"`
	Distinct   int             `yaml:"distinct"`
	Activated  int             `yaml:"activated"`
	Failures   []Failure       `yaml:"failures,omitempty"`
	StartedAt  time.Time       `yaml:"startedAt"`
	FinishedAt time.Time       `yaml:"finishedAt"`
}

func NewSummary(runID string, target string) *Summary {
	return &Summary{
		RunID:     runID,
		Target:    target,
		Profiles:  make([]ProfileReport, 0, 2),
		Failures:  make([]Failure, 0),
		StartedAt: time.Now(),
	}
}

func (s *Summary) Finish() {
	s.FinishedAt = time.Now()
}

// Failed reports whether any fetch or activation went wrong.
func (s *Summary) Failed() bool {

	if s.Aborted || len(s.Failures) > 0 {
		return true
	}

	for _, p := range s.Profiles {
		if len(p.Error) > 0 {
			return true
		}
	}

	return false
}

func (s *Summary) Print(w io.Writer) {

	switch {
	case s.Aborted:
		fmt.Fprintf(w, "Combining into profile %s aborted, no rules were activated\n", s.Target)
	case s.DryRun:
		fmt.Fprintf(w, "Dry run: profile %s would receive %d total rules (%d distinct)\n", s.Target, s.Processed, s.Distinct)
	default:
		fmt.Fprintf(w, "Combined profile %s created with %d total rules\n", s.Target, s.Processed)
	}

	for _, p := range s.Profiles {
		if len(p.Error) > 0 {
			fmt.Fprintf(w, "  source %s: %d rules (error: %s)\n", p.Key, p.Rules, p.Error)
			continue
		}
		fmt.Fprintf(w, "  source %s: %d rules\n", p.Key, p.Rules)
	}

	if len(s.Failures) > 0 {
		fmt.Fprintf(w, "  %d of %d activations failed\n", len(s.Failures), s.Processed)
	}
}

// WriteReport stores the summary as YAML.
func (s *Summary) WriteReport(path string) error {

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}
