package services

import (
	"math"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
)

const (
	// attendanceLogScale normalizes log10(attendance); 6 corresponds to a
	// one-million-person event scoring 1.0 on the attendance axis.
	attendanceLogScale = 6.0
	// maxEventRank is the provider's rank ceiling.
	maxEventRank = 5.0
)

// getCategoryMultipliers maps provider event categories to demand impact
// multipliers. Unlisted categories use defaultCategoryMultiplier.
func getCategoryMultipliers() map[string]float64 {
	return map[string]float64{
		"sports":     1.0,
		"concert":    0.9,
		"music":      0.9,
		"festival":   0.8,
		"conference": 0.6,
		"expo":       0.6,
		"community":  0.4,
	}
}

const defaultCategoryMultiplier = 0.5

// EventScorer aggregates raw local events into the per-hour event signal:
// count, log1p of total attendance, inverse nearest distance, and a capped
// [0,1] impact score.
type EventScorer struct{}

// NewEventScorer creates a scorer instance.
func NewEventScorer() EventScorer {
	return EventScorer{}
}

// Score aggregates the events overlapping the given hour. Events outside
// radiusMiles of origin contribute nothing.
func (s EventScorer) Score(
	events []forecast.LocalEvent,
	origin kernel.GeoPoint,
	radiusMiles float64,
	hour time.Time,
) forecast.EventSignal {
	var signal forecast.EventSignal
	totalAttendance := 0.0
	nearest := math.Inf(1)

	hourEnd := hour.Add(time.Hour)
	for _, event := range events {
		if !event.StartsAt.Before(hourEnd) || !event.EndsAt.After(hour) {
			continue
		}

		distance := origin.DistanceMiles(event.Venue)
		if radiusMiles > 0 && distance > radiusMiles {
			continue
		}

		signal.Count++
		totalAttendance += float64(event.Attendance)
		if distance < nearest {
			nearest = distance
		}
		signal.Impact += s.eventImpact(event, distance, radiusMiles)
	}

	if signal.Count == 0 {
		return forecast.EventSignal{}
	}

	signal.AttendanceLog = math.Log1p(totalAttendance)
	signal.Proximity = 1 / (1 + nearest)
	signal.Impact = math.Min(signal.Impact, 1)
	return signal
}

// eventImpact computes one event's contribution:
// categoryMultiplier x log10(max(100,attendance))/scale x distanceDecay x rank/5.
func (s EventScorer) eventImpact(event forecast.LocalEvent, distance, radiusMiles float64) float64 {
	multiplier, ok := getCategoryMultipliers()[event.Category]
	if !ok {
		multiplier = defaultCategoryMultiplier
	}

	attendance := math.Log10(math.Max(100, float64(event.Attendance))) / attendanceLogScale

	decay := 1.0
	if radiusMiles > 0 {
		decay = math.Max(0, 1-distance/radiusMiles)
	}

	rank := math.Min(float64(event.Rank), maxEventRank) / maxEventRank

	impact := multiplier * attendance * decay * rank
	return math.Max(0, math.Min(impact, 1))
}
