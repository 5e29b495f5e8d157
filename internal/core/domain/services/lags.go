package services

import (
	"time"

	"forecast/internal/core/domain/model/forecast"
)

// LagCalculator derives historical demand features from hourly volume
// history. Demand for one hour is the mean of the dine-in and delivery
// series, matching the target the trainers fit.
type LagCalculator struct{}

// NewLagCalculator creates a calculator instance.
func NewLagCalculator() LagCalculator {
	return LagCalculator{}
}

// Compute derives the lag signal for the given hour from history. Missing
// hours contribute zero: a restaurant with no history predicts from the
// calendar and external signals alone.
func (c LagCalculator) Compute(history []forecast.HourlyVolume, hour time.Time) forecast.LagSignal {
	hour = hour.Truncate(time.Hour)
	demandByHour := make(map[time.Time]float64, len(history))
	for _, volume := range history {
		demandByHour[volume.Hour.Truncate(time.Hour)] = (volume.DineIn + volume.Delivery) / 2
	}

	signal := forecast.LagSignal{
		SameHour1D: demandByHour[hour.Add(-24*time.Hour)],
		SameHour7D: demandByHour[hour.Add(-7*24*time.Hour)],
	}
	signal.RollingAvg7D = c.rollingMean(demandByHour, hour, 7)
	signal.RollingAvg28 = c.rollingMean(demandByHour, hour, 28)
	if signal.RollingAvg28 > 0 {
		signal.Trend = (signal.RollingAvg7D - signal.RollingAvg28) / signal.RollingAvg28
	}
	return signal
}

// rollingMean averages the demand of the hours present in the window
// (hour-days, hour). Only recorded hours count; closed restaurants do not
// drag the mean to zero.
func (c LagCalculator) rollingMean(demandByHour map[time.Time]float64, hour time.Time, days int) float64 {
	from := hour.Add(-time.Duration(days) * 24 * time.Hour)
	sum, count := 0.0, 0
	for recordedHour, demand := range demandByHour {
		if recordedHour.Before(from) || !recordedHour.Before(hour) {
			continue
		}
		sum += demand
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
