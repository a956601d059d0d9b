// Package registry provides the keyed entity store shared by a workflow run.
// Layers, tables, and datastores each live in their own Registry; IDs are
// unique within one. The registry never logs — collision outcomes are
// returned to the calling command, which decides what to record.
package registry

import (
	"sort"

	"geoflow/internal/model"
)

// Outcome reports what Register did when an ID collided (or not).
type Outcome struct {
	Inserted bool
	Warned   bool
	Failed   bool
}

type Registry[T any] struct {
	kind    string
	entries map[string]T
}

// New creates an empty registry. kind names the entity family ("layer",
// "table", "datastore") for messages built by callers.
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[string]T),
	}
}

func (r *Registry[T]) Kind() string { return r.kind }

func (r *Registry[T]) Get(id string) (T, bool) {
	obj, ok := r.entries[id]
	return obj, ok
}

func (r *Registry[T]) Exists(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Register inserts obj under id. A free ID inserts unconditionally; an
// occupied one resolves per policy:
//
//	Replace         overwrite, no warning
//	ReplaceAndWarn  overwrite, warned
//	Warn            keep existing, warned
//	Fail            keep existing, failed
func (r *Registry[T]) Register(id string, obj T, policy model.CollisionPolicy) Outcome {
	if _, exists := r.entries[id]; !exists {
		r.entries[id] = obj
		return Outcome{Inserted: true}
	}
	switch policy {
	case model.CollisionReplace:
		r.entries[id] = obj
		return Outcome{Inserted: true}
	case model.CollisionReplaceAndWarn:
		r.entries[id] = obj
		return Outcome{Inserted: true, Warned: true}
	case model.CollisionWarn:
		return Outcome{Warned: true}
	default: // CollisionFail, and anything unrecognized fails closed
		return Outcome{Failed: true}
	}
}

// Remove deletes the entry if present. Removing an absent ID is a no-op:
// cleanup paths run on intermediates that an earlier failure may already
// have removed.
func (r *Registry[T]) Remove(id string) {
	delete(r.entries, id)
}

func (r *Registry[T]) Len() int { return len(r.entries) }

// IDs returns the registered IDs, sorted.
func (r *Registry[T]) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear drops every entry. Called at workflow teardown.
func (r *Registry[T]) Clear() {
	r.entries = make(map[string]T)
}
