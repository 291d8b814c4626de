package approval

import "time"

// MetricsRecord aggregates approval decisions over a time window. It
// is derived on demand, never persisted.
type MetricsRecord struct {
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	Total          int       `json:"total_assisted_replies"`
	Edited         int       `json:"edited_count"`
	LowConfidence  int       `json:"low_confidence_count"`
	AcceptanceRate *float64  `json:"acceptance_rate"` // null when no decisions
	MeanConfidence *float64  `json:"mean_confidence"` // null when no decisions
}

// ComputeStats aggregates a decision set against the review threshold.
// Pure: no side effects, safe to call concurrently.
func ComputeStats(decisions []ApprovalDecision, threshold float64) MetricsRecord {
	record := MetricsRecord{Total: len(decisions)}
	if record.Total == 0 {
		return record
	}

	var confidenceSum float64
	for _, d := range decisions {
		if d.AgentEdited {
			record.Edited++
		}
		if d.DraftConfidence < threshold {
			record.LowConfidence++
		}
		confidenceSum += d.DraftConfidence
	}

	acceptance := float64(record.Total-record.Edited) / float64(record.Total)
	mean := confidenceSum / float64(record.Total)
	record.AcceptanceRate = &acceptance
	record.MeanConfidence = &mean
	return record
}
