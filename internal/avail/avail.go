// Package avail models a service handle that is either ready to use or
// unavailable for a recorded reason. Handles are built once at startup and
// passed to the components that need them.
package avail

// Handle is either Ready(value) or Unavailable(reason).
type Handle[T any] struct {
	value  T
	ready  bool
	reason string
}

func Ready[T any](v T) Handle[T] {
	return Handle[T]{value: v, ready: true}
}

func Unavailable[T any](reason string) Handle[T] {
	return Handle[T]{reason: reason}
}

// Get returns the value and whether the handle is ready.
func (h Handle[T]) Get() (T, bool) {
	return h.value, h.ready
}

func (h Handle[T]) IsReady() bool {
	return h.ready
}

// Reason explains why the handle is unavailable. Empty for ready handles.
func (h Handle[T]) Reason() string {
	return h.reason
}
