package services

import (
	"math"
	"time"

	"forecast/internal/core/domain/model/forecast"
)

// FeatureAssembler turns a raw feature snapshot into the canonical
// fixed-order feature vector the models consume. Assembly is pure and
// deterministic: the same snapshot always produces the same vector.
type FeatureAssembler struct{}

// NewFeatureAssembler creates an assembler instance.
func NewFeatureAssembler() FeatureAssembler {
	return FeatureAssembler{}
}

// Assemble builds the feature vector for the snapshot's hour.
func (a FeatureAssembler) Assemble(snapshot *forecast.FeatureSnapshot) (forecast.FeatureVector, error) {
	if err := snapshot.Validate(); err != nil {
		return forecast.FeatureVector{}, err
	}

	values := make([]float64, 0, forecast.FeatureCount)
	values = append(values, a.temporalFeatures(snapshot.CapturedAt(), snapshot.IsHoliday())...)
	values = append(values, a.weatherFeatures(snapshot.Weather())...)
	values = append(values, a.eventFeatures(snapshot.Events())...)
	values = append(values, a.lagFeatures(snapshot.Lags())...)

	return forecast.NewFeatureVector(snapshot.CapturedAt(), values)
}

// temporalFeatures encodes hour and day-of-week one-hots, weekend and
// holiday flags, and cyclical month and week-of-year positions.
func (a FeatureAssembler) temporalFeatures(hour time.Time, isHoliday bool) []float64 {
	values := make([]float64, 0, 37)

	for slot := range 24 {
		values = append(values, oneHot(hour.Hour() == slot))
	}
	for dow := range 7 {
		values = append(values, oneHot(int(hour.Weekday()) == dow))
	}

	weekend := hour.Weekday() == time.Saturday || hour.Weekday() == time.Sunday
	values = append(values, oneHot(weekend), oneHot(isHoliday))

	monthAngle := 2 * math.Pi * float64(hour.Month()-1) / 12
	_, week := hour.ISOWeek()
	weekAngle := 2 * math.Pi * float64(week-1) / 52
	values = append(values,
		math.Sin(monthAngle), math.Cos(monthAngle),
		math.Sin(weekAngle), math.Cos(weekAngle),
	)
	return values
}

// weatherFeatures encodes the raw numeric weather signal plus the one-hot
// severity bucket.
func (a FeatureAssembler) weatherFeatures(obs forecast.WeatherObservation) []float64 {
	condition := BucketWeatherCondition(obs)
	return []float64{
		obs.Temperature,
		obs.FeelsLike,
		obs.Humidity,
		obs.Precipitation,
		obs.WindSpeed,
		obs.CloudCover,
		oneHot(condition == ConditionClear),
		oneHot(condition == ConditionCloudy),
		oneHot(condition == ConditionRain),
		oneHot(condition == ConditionSnow),
		oneHot(condition == ConditionExtreme),
	}
}

func (a FeatureAssembler) eventFeatures(signal forecast.EventSignal) []float64 {
	return []float64{
		float64(signal.Count),
		signal.AttendanceLog,
		signal.Proximity,
		signal.Impact,
	}
}

func (a FeatureAssembler) lagFeatures(signal forecast.LagSignal) []float64 {
	return []float64{
		signal.SameHour1D,
		signal.SameHour7D,
		signal.RollingAvg7D,
		signal.RollingAvg28,
		signal.Trend,
	}
}

func oneHot(on bool) float64 {
	if on {
		return 1
	}
	return 0
}
