// Package services holds the pure domain logic of the forecasting engine:
// feature engineering (temporal encoding, weather bucketing, event impact
// scoring, demand lags, z-score normalization), the three trainers (ridge
// gradient descent, gradient-boosted trees, inverse-error ensemble), the
// predictor with confidence and uncertainty intervals, and feature
// importance ranking. Everything here is deterministic given its inputs
// and free of I/O.
package services
