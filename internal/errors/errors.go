// Package errors wraps github.com/cockroachdb/errors for railcheck.
//
// Validation splits failures into two tiers. Rule violations found in a scene
// are reported as issues and never surface as Go errors. Problems that make a
// check impossible to run at all (a malformed ontology, a camera without
// calibration) are errors marked with ErrConfiguration:
//
//	return errors.Configurationf("attribute %q: unknown type %q", name, typ)
//
//	if errors.IsConfiguration(err) {
//	    // skip this checker or abort the run
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

var (
	New           = crdb.New
	Newf          = crdb.Newf
	Wrap          = crdb.Wrap
	Wrapf         = crdb.Wrapf
	WithHint      = crdb.WithHint
	Is            = crdb.Is
	As            = crdb.As
	Mark          = crdb.Mark
	CombineErrors = crdb.CombineErrors
	FlattenHints  = crdb.FlattenHints
)

// ErrConfiguration marks fatal configuration failures.
var ErrConfiguration = crdb.New("configuration error")

// Configurationf returns a formatted error marked with ErrConfiguration.
func Configurationf(format string, args ...interface{}) error {
	return crdb.Mark(crdb.NewWithDepthf(1, format, args...), ErrConfiguration)
}

// IsConfiguration reports whether err carries the ErrConfiguration mark.
func IsConfiguration(err error) bool {
	return crdb.Is(err, ErrConfiguration)
}
