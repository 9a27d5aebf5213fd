package ml

import (
	"fmt"
	"time"
)

const (
	// TimestampLayout is the fixed format of Fecha-I and Fecha-O.
	TimestampLayout = "2006-01-02 15:04:05"

	// DelayThresholdMinutes must be strictly exceeded for a flight to
	// count as delayed.
	DelayThresholdMinutes = 15.0
)

// MinutesLate returns the signed difference between actual and scheduled
// departure in minutes.
func MinutesLate(rec TrainingRecord) (float64, error) {
	scheduled, err := time.Parse(TimestampLayout, rec.ScheduledAt)
	if err != nil {
		return 0, fmt.Errorf("parse scheduled departure: %w", err)
	}
	actual, err := time.Parse(TimestampLayout, rec.ActualAt)
	if err != nil {
		return 0, fmt.Errorf("parse actual departure: %w", err)
	}
	return actual.Sub(scheduled).Minutes(), nil
}

// DelayLabel derives the binary target for one record.
func DelayLabel(rec TrainingRecord) (int, error) {
	diff, err := MinutesLate(rec)
	if err != nil {
		return 0, err
	}
	if diff > DelayThresholdMinutes {
		return 1, nil
	}
	return 0, nil
}

// DeriveLabels labels a batch of training records. Records whose
// timestamps do not parse are excluded rather than given a default label:
// kept holds the indices of surviving records, aligned with labels, and
// dropped counts the exclusions. A malformed row never affects its
// neighbors.
func DeriveLabels(records []TrainingRecord) (labels []int, kept []int, dropped int) {
	labels = make([]int, 0, len(records))
	kept = make([]int, 0, len(records))
	for i, rec := range records {
		label, err := DelayLabel(rec)
		if err != nil {
			dropped++
			continue
		}
		labels = append(labels, label)
		kept = append(kept, i)
	}
	return labels, kept, dropped
}
