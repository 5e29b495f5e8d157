package mlmodel

import (
	"fmt"

	"forecast/internal/pkg/errs"
)

// Status represents the lifecycle state of a trained model version.
//
// State transitions:
//
//	Training ──> Active ──> Deprecated
//	    │           ▲            │
//	    │           └────────────┘
//	    │            (rollback)
//	    └──> Failed
//
// At most one version per restaurant is Active at any time; the registry
// enforces that invariant by demoting the previous Active version in the
// same transaction that activates a new one. Failed is a final state.
type Status int

const (
	// UnknownStatus represents an invalid or undefined status.
	UnknownStatus Status = iota

	// Training is the initial status of a freshly trained, not yet
	// activated artifact.
	Training

	// Active marks the single version serving predictions for its
	// restaurant.
	Active

	// Deprecated marks a superseded version kept for rollback.
	Deprecated

	// Failed marks a version whose training raised an error. Failed
	// versions are excluded from loading and rollback.
	Failed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		UnknownStatus: "UNKNOWN",
		Training:      "TRAINING",
		Active:        "ACTIVE",
		Deprecated:    "DEPRECATED",
		Failed:        "FAILED",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // UnknownStatus is intentionally excluded as it's invalid
	return map[Status]string{
		Training:   "TRAINING",
		Active:     "ACTIVE",
		Deprecated: "DEPRECATED",
		Failed:     "FAILED",
	}
}

// StatusFromString parses the persisted string form of a status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return UnknownStatus, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the status is one of the four lifecycle states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String implements fmt.Stringer using the persisted representation.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Activate transitions to Active. Valid from Training (first activation)
// and Deprecated (rollback reactivation).
func (s Status) Activate() (Status, error) {
	if s != Training && s != Deprecated {
		return 0, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a valid status to activate", s))
	}
	return Active, nil
}

// Deprecate transitions to Deprecated. Valid only from Active.
func (s Status) Deprecate() (Status, error) {
	if s != Active {
		return 0, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a valid status to deprecate", s))
	}
	return Deprecated, nil
}

// Fail transitions to Failed. Failed is final and cannot be re-failed.
func (s Status) Fail() (Status, error) {
	if s == Failed {
		return 0, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is already failed", s))
	}
	return Failed, nil
}
