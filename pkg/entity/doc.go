// Package entity defines the static metadata descriptors the forms layer
// consumes: field definitions, composite-uniqueness declarations (legacy
// grouped-field tuples and modern named constraints), display labels, and the
// per-field error message templates. Descriptors are built explicitly at
// registration time rather than discovered through reflection, so the set of
// unique field groups a form validates against is fixed once NewMeta returns.
package entity
