package model

import (
	"fmt"
	"strings"
)

// CheckStatus is the outcome of a backend preflight check.
type CheckStatus string

const (
	CheckStatusOK      CheckStatus = "ok"
	CheckStatusWarning CheckStatus = "warning"
	CheckStatusError   CheckStatus = "error"
)

// CheckResult is the result of a single backend preflight check, for example the
// reachability of the Kubernetes API.
type CheckResult struct {
	ID      string
	Message string
	Status  CheckStatus
}

// CheckSummary aggregates the results of a backend check run.
type CheckSummary struct {
	Warnings int
	Errors   int
}

// SummarizeChecks aggregates check results.
func SummarizeChecks(results []CheckResult) CheckSummary {
	var s CheckSummary
	for _, r := range results {
		switch r.Status {
		case CheckStatusWarning:
			s.Warnings++
		case CheckStatusError:
			s.Errors++
		}
	}
	return s
}

// Ready returns true when the backend can run executions, warnings don't block it.
func (s CheckSummary) Ready() bool { return s.Errors == 0 }

func (s CheckSummary) String() string {
	if s.Errors == 0 && s.Warnings == 0 {
		return "All checks passed!"
	}

	var parts []string
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", s.Warnings))
	}
	return strings.Join(parts, ", ")
}
