package health

import "bounded-cache/internal/metrics"

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// ---------- RULES ----------

// Failed snapshot saves mean durability is degraded.
func SaveFailureRule(snapshot map[string]int64) RuleResult {
	failures := snapshot[string(metrics.StorageSaveFailuresTotal)]

	if failures > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Snapshot save failures detected",
			Recommendation: "Check disk space and storage backend permissions",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Evictions keeping pace with inserts suggest the capacity is too small
// for the working set.
func EvictionPressureRule(snapshot map[string]int64) RuleResult {
	sets := snapshot[string(metrics.CacheSetsTotal)]
	evictions := snapshot[string(metrics.CacheEvictionsTotal)]

	if sets >= 10 && evictions*2 >= sets {
		return RuleResult{
			Triggered:      true,
			Signal:         "High eviction pressure",
			Recommendation: "Increase cache capacity or reduce the working set",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// A majority of reads missing suggests callers rarely find what they
// stored, often a sign of TTLs shorter than the access pattern.
func MissRateRule(snapshot map[string]int64) RuleResult {
	gets := snapshot[string(metrics.CacheGetsTotal)]
	misses := snapshot[string(metrics.CacheMissesTotal)]

	if gets >= 50 && misses*2 > gets {
		return RuleResult{
			Triggered:      true,
			Signal:         "Cache miss rate above 50%",
			Recommendation: "Review TTL settings and key usage patterns",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}
