package services

import "forecast/internal/core/domain/model/forecast"

// WeatherCondition is the one-hot bucket derived from raw weather values.
type WeatherCondition int

const (
	// ConditionClear is the default bucket when no rule matches.
	ConditionClear WeatherCondition = iota
	// ConditionCloudy applies above 70% cloud cover.
	ConditionCloudy
	// ConditionRain applies above 5mm precipitation or 70% precipitation
	// probability.
	ConditionRain
	// ConditionSnow applies on any snowfall or above 20mm precipitation.
	ConditionSnow
	// ConditionExtreme applies below -10C or above 40C.
	ConditionExtreme
)

// BucketWeatherCondition classifies a raw observation into exactly one
// condition bucket. Rules are checked in severity order: extreme before
// snow before rain before cloudy, clear otherwise.
func BucketWeatherCondition(obs forecast.WeatherObservation) WeatherCondition {
	switch {
	case obs.Temperature < -10 || obs.Temperature > 40:
		return ConditionExtreme
	case obs.Snowfall > 0 || obs.Precipitation > 20:
		return ConditionSnow
	case obs.Precipitation > 5 || obs.PrecipProbability > 70:
		return ConditionRain
	case obs.CloudCover > 70:
		return ConditionCloudy
	default:
		return ConditionClear
	}
}

// String implements fmt.Stringer.
func (c WeatherCondition) String() string {
	switch c {
	case ConditionClear:
		return "clear"
	case ConditionCloudy:
		return "cloudy"
	case ConditionRain:
		return "rain"
	case ConditionSnow:
		return "snow"
	case ConditionExtreme:
		return "extreme"
	default:
		return "unknown"
	}
}
