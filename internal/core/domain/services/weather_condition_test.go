package services_test

import (
	"testing"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
)

func TestBucketWeatherCondition(t *testing.T) {
	tests := []struct {
		name string
		obs  forecast.WeatherObservation
		want services.WeatherCondition
	}{
		{"mild and dry is clear", forecast.WeatherObservation{Temperature: 20}, services.ConditionClear},
		{"heavy cloud cover is cloudy", forecast.WeatherObservation{Temperature: 15, CloudCover: 80}, services.ConditionCloudy},
		{"cloud cover at 70 stays clear", forecast.WeatherObservation{Temperature: 15, CloudCover: 70}, services.ConditionClear},
		{"precipitation above 5mm is rain", forecast.WeatherObservation{Temperature: 15, Precipitation: 6}, services.ConditionRain},
		{"high rain probability is rain", forecast.WeatherObservation{Temperature: 15, PrecipProbability: 80}, services.ConditionRain},
		{"any snowfall is snow", forecast.WeatherObservation{Temperature: -2, Snowfall: 0.5}, services.ConditionSnow},
		{"extreme precipitation is snow", forecast.WeatherObservation{Temperature: 10, Precipitation: 25}, services.ConditionSnow},
		{"deep freeze is extreme", forecast.WeatherObservation{Temperature: -15}, services.ConditionExtreme},
		{"heat wave is extreme", forecast.WeatherObservation{Temperature: 42}, services.ConditionExtreme},
		{"extreme beats snow", forecast.WeatherObservation{Temperature: -20, Snowfall: 3}, services.ConditionExtreme},
		{"snow beats rain", forecast.WeatherObservation{Temperature: 0, Snowfall: 1, Precipitation: 8}, services.ConditionSnow},
		{"rain beats cloudy", forecast.WeatherObservation{Temperature: 12, Precipitation: 7, CloudCover: 95}, services.ConditionRain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.BucketWeatherCondition(tt.obs))
		})
	}
}

func TestWeatherCondition_String(t *testing.T) {
	assert.Equal(t, "clear", services.ConditionClear.String())
	assert.Equal(t, "cloudy", services.ConditionCloudy.String())
	assert.Equal(t, "rain", services.ConditionRain.String())
	assert.Equal(t, "snow", services.ConditionSnow.String())
	assert.Equal(t, "extreme", services.ConditionExtreme.String())
}
