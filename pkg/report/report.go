// Package report renders conformance findings either as a line-oriented
// human report or as a structured JSON record. Rendering is deterministic:
// the same findings always produce byte-identical output.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/agentlint/agentlint/pkg/rules"
)

// Report is the final result of one validation run.
type Report struct {
	Target   string          `json:"target"`
	Level    rules.Level     `json:"level"`
	Findings []rules.Finding `json:"findings"`
	Errors   int             `json:"errors"`
	Warnings int             `json:"warnings"`
	Pass     bool            `json:"pass"`
}

// New assembles a report from an ordered sequence of findings. The run
// passes when no fatal or error findings are present, regardless of
// warnings.
func New(target string, level rules.Level, findings []rules.Finding) *Report {
	r := &Report{
		Target:   target,
		Level:    level,
		Findings: findings,
	}
	if r.Findings == nil {
		r.Findings = []rules.Finding{}
	}

	for _, f := range findings {
		switch f.Severity {
		case rules.SeverityFatal, rules.SeverityError:
			r.Errors++
		case rules.SeverityWarning:
			r.Warnings++
		}
	}
	r.Pass = r.Errors == 0

	return r
}

// WriteText renders the human-readable report: one line per finding, then
// a summary with the overall result.
func (r *Report) WriteText(w io.Writer) error {
	errorColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow)

	for _, f := range r.Findings {
		var err error
		switch f.Severity {
		case rules.SeverityFatal, rules.SeverityError:
			_, err = errorColor.Fprintf(w, "%-7s %s: %s\n", f.Severity, f.Rule, f.Message)
		default:
			_, err = warnColor.Fprintf(w, "%-7s %s: %s\n", f.Severity, f.Rule, f.Message)
		}
		if err != nil {
			return errors.Wrap(err, "failed to write finding")
		}
	}

	if len(r.Findings) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return errors.Wrap(err, "failed to write report")
		}
	}

	result := "FAIL"
	resultColor := errorColor
	if r.Pass {
		result = "PASS"
		resultColor = color.New(color.FgGreen, color.Bold)
	}

	_, err := resultColor.Fprintf(w, "%s %s (level: %s, errors: %d, warnings: %d)\n",
		result, r.Target, r.Level, r.Errors, r.Warnings)
	return errors.Wrap(err, "failed to write summary")
}

// JSON renders the structured report.
func (r *Report) JSON() (string, error) {
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal report")
	}
	return string(bytes), nil
}
