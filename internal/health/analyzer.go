package health

import (
	"strings"

	"bounded-cache/internal/logs"
	"bounded-cache/internal/metrics"
)

// Analyzer converts metrics + recent logs into a health report.
type Analyzer struct {
	metrics *metrics.Registry
	logger  *logs.Logger
	rules   []Rule
}

// NewAnalyzer creates a new analyzer with the standard rule set.
func NewAnalyzer(reg *metrics.Registry, logger *logs.Logger) *Analyzer {
	return &Analyzer{
		metrics: reg,
		logger:  logger,
		rules: []Rule{
			SaveFailureRule,
			EvictionPressureRule,
			MissRateRule,
		},
	}
}

// Analyze evaluates metrics and logs and returns a health report.
func (a *Analyzer) Analyze() Report {
	snapshot := a.metrics.Snapshot()

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	/* ---------- METRICS-BASED RULES ---------- */

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}

		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)

		// Escalate status
		if result.Severity == StatusCritical {
			status = StatusCritical
		} else if result.Severity == StatusDegraded && status == StatusOK {
			status = StatusDegraded
		}
	}

	/* ---------- LOG-BASED SIGNALS ---------- */

	logEntries := a.logger.GetLast(100)

	corruptSnapshots := 0
	panicCount := 0

	for _, entry := range logEntries {
		if entry.Level == logs.WARN &&
			strings.Contains(entry.Message, "corrupt snapshot") {
			corruptSnapshots++
		}

		if entry.Level == logs.ERROR &&
			strings.Contains(entry.Message, "panic") {
			panicCount++
		}
	}

	if corruptSnapshots > 0 {
		signals = append(signals,
			"Corrupt persisted snapshots detected in logs",
		)
		recommendations = append(recommendations,
			"Inspect the storage backend; the cache started empty instead",
		)
		if status == StatusOK {
			status = StatusDegraded
		}
	}

	if panicCount > 0 {
		signals = append(signals,
			"Application panics detected in logs",
		)
		recommendations = append(recommendations,
			"Inspect stack traces and stabilize error handling",
		)
		status = StatusCritical
	}

	/* ---------- SUMMARY ---------- */

	summary := "Cache is healthy"
	if status != StatusOK {
		summary = "Cache health issues detected"
	}

	return Report{
		OverallStatus:   status,
		Summary:         summary,
		Signals:         signals,
		Recommendations: recommendations,
	}
}
