// Package forecast contains the feature-side domain model of the demand
// forecasting engine: the canonical feature catalog, model-ready feature
// vectors, persisted raw feature snapshots, the Restaurant aggregate, and
// the data contracts consumed from the weather and local-event providers.
//
// The feature ordering exposed by FeatureNames is canonical and shared with
// every trained weight artifact; changing it invalidates persisted models.
package forecast
