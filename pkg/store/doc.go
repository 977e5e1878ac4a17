// Package store defines the query collaborator contract the forms layer
// validates against, plus an in-memory reference repository. The forms layer
// only needs the read-only existence check; the write path exists so the
// store keeps enforcing uniqueness at commit time, reporting violations as
// IntegrityError values the way a relational backend would.
package store
