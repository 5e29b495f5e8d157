package forecast

import "fmt"

// FeatureCount is the canonical length of every feature vector. The order
// produced by FeatureNames is a load-bearing contract: every trained weight
// artifact indexes its coefficients by this exact name sequence.
const FeatureCount = 57

// Canonical non-block feature names, in order.
const (
	FeatureIsWeekend          = "is_weekend"
	FeatureIsHoliday          = "is_holiday"
	FeatureMonthSin           = "month_sin"
	FeatureMonthCos           = "month_cos"
	FeatureWeekSin            = "week_sin"
	FeatureWeekCos            = "week_cos"
	FeatureTemperature        = "temperature"
	FeatureFeelsLike          = "feels_like"
	FeatureHumidity           = "humidity"
	FeaturePrecipitation      = "precipitation"
	FeatureWindSpeed          = "wind_speed"
	FeatureCloudCover         = "cloud_cover"
	FeatureCondClear          = "cond_clear"
	FeatureCondCloudy         = "cond_cloudy"
	FeatureCondRain           = "cond_rain"
	FeatureCondSnow           = "cond_snow"
	FeatureCondExtreme        = "cond_extreme"
	FeatureEventCount         = "event_count"
	FeatureEventAttendanceLog = "event_attendance_log"
	FeatureEventProximity     = "event_proximity"
	FeatureEventImpact        = "event_impact"
	FeatureLagSameHour1D      = "lag_same_hour_1d"
	FeatureLagSameHour7D      = "lag_same_hour_7d"
	FeatureRollingAvg7D       = "rolling_avg_7d"
	FeatureRollingAvg28D      = "rolling_avg_28d"
	FeatureDemandTrend        = "demand_trend"
)

var (
	featureNames   = buildFeatureNames()
	binaryFeatures = buildBinaryFeatures()
	featureIndexes = buildFeatureIndexes()
)

func buildFeatureNames() []string {
	names := make([]string, 0, FeatureCount)
	for hour := range 24 {
		names = append(names, fmt.Sprintf("hour_%02d", hour))
	}
	for dow := range 7 {
		names = append(names, fmt.Sprintf("dow_%d", dow))
	}
	names = append(names,
		FeatureIsWeekend,
		FeatureIsHoliday,
		FeatureMonthSin,
		FeatureMonthCos,
		FeatureWeekSin,
		FeatureWeekCos,
		FeatureTemperature,
		FeatureFeelsLike,
		FeatureHumidity,
		FeaturePrecipitation,
		FeatureWindSpeed,
		FeatureCloudCover,
		FeatureCondClear,
		FeatureCondCloudy,
		FeatureCondRain,
		FeatureCondSnow,
		FeatureCondExtreme,
		FeatureEventCount,
		FeatureEventAttendanceLog,
		FeatureEventProximity,
		FeatureEventImpact,
		FeatureLagSameHour1D,
		FeatureLagSameHour7D,
		FeatureRollingAvg7D,
		FeatureRollingAvg28D,
		FeatureDemandTrend,
	)
	return names
}

// buildBinaryFeatures marks the one-hot and boolean positions that z-score
// normalization must leave untouched.
func buildBinaryFeatures() map[int]struct{} {
	binary := make(map[int]struct{})
	for i, name := range buildFeatureNames() {
		switch {
		case len(name) > 5 && name[:5] == "hour_",
			len(name) > 4 && name[:4] == "dow_",
			len(name) > 5 && name[:5] == "cond_",
			name == FeatureIsWeekend,
			name == FeatureIsHoliday:
			binary[i] = struct{}{}
		}
	}
	return binary
}

func buildFeatureIndexes() map[string]int {
	indexes := make(map[string]int, FeatureCount)
	for i, name := range buildFeatureNames() {
		indexes[name] = i
	}
	return indexes
}

// FeatureNames returns the canonical, fixed-order feature name list.
// The returned slice is a copy; callers may not mutate the catalog.
func FeatureNames() []string {
	names := make([]string, FeatureCount)
	copy(names, featureNames)
	return names
}

// IsBinaryFeature reports whether the feature at index is a one-hot or
// boolean feature excluded from normalization.
func IsBinaryFeature(index int) bool {
	_, ok := binaryFeatures[index]
	return ok
}

// FeatureIndex returns the canonical position of a feature name.
func FeatureIndex(name string) (int, bool) {
	i, ok := featureIndexes[name]
	return i, ok
}
