// Package numeric holds the small pieces of numerical code shared by the
// forecaster and the two similarity indexes: a standard scaler, ordinary
// least squares over a single feature, cosine similarity and min-max scaling.
//
// Everything here is deterministic: functions accumulate in input order and
// never use randomness, so identical inputs give bit-identical outputs.
package numeric
