// Package mlmodel contains the model-side domain model of the forecasting
// engine: the versioned MLModel aggregate with its lifecycle state machine,
// the tagged Weights union holding algorithm-specific parameters for the
// three model families, flat-array regression trees, training
// hyperparameters, and accuracy metrics.
package mlmodel
