// Package kernel contains shared value objects used across the forecasting
// domain: validated UUIDs for entity identity and GeoPoints locating
// restaurants and event venues.
//
// All kernel types are immutable value objects created through constructor
// functions; zero values fail Validate.
package kernel
