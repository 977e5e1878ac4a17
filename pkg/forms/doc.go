// Package forms binds submitted data to an entity instance and runs the
// validation lifecycle: per-field cleaning, custom clean steps, and the
// composite-uniqueness check against the backing repository. Errors from
// every step are accumulated into one field-keyed mapping and reported
// together, so a submission surfaces all of its problems in a single pass.
package forms
