package bbecs

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/DangerosoDavo/bbecs/component"
)

type resourceMap struct {
	values map[string]component.Value
}

func newResourceContainer() *resourceMap {
	return &resourceMap{values: make(map[string]component.Value)}
}

func (r *resourceMap) Get(name string) (component.Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *resourceMap) Set(name string, value component.Value) {
	r.values[name] = value
}

func (r *resourceMap) Delete(name string) {
	delete(r.values, name)
}

func (r *resourceMap) Range(fn func(string, component.Value) bool) {
	for k, v := range r.values {
		if !fn(k, v) {
			return
		}
	}
}

var _ ResourceContainer = (*resourceMap)(nil)

// PutResource stores a singleton value, replacing any previous one.
func (w *World) PutResource(name string, value component.Value) error {
	if component.IsEmpty(value) {
		return errors.Wrapf(ErrEmptyValue, "put resource %q", name)
	}
	w.resources.Set(name, value)
	return nil
}

// GetResource returns the resource stored under name.
func (w *World) GetResource(name string) (component.Value, error) {
	v, ok := w.resources.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrResourceNotFound, "get resource %q", name)
	}
	return v, nil
}

// ResourceAs returns the resource under name narrowed to T.
func ResourceAs[T component.Value](w *World, name string) (T, error) {
	v, err := w.GetResource(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return component.As[T](v)
}

// ResourceMut returns a handle that writes back into the container.
func (w *World) ResourceMut(name string) (*ResourceRef, error) {
	if _, ok := w.resources.Get(name); !ok {
		return nil, errors.Wrapf(ErrResourceNotFound, "resource %q", name)
	}
	return &ResourceRef{container: w.resources, name: name}, nil
}

// DeleteResource removes the resource stored under name.
func (w *World) DeleteResource(name string) error {
	if _, ok := w.resources.Get(name); !ok {
		return errors.Wrapf(ErrResourceNotFound, "delete resource %q", name)
	}
	w.resources.Delete(name)
	return nil
}

// Resources returns the backing container.
func (w *World) Resources() ResourceContainer {
	return w.resources
}

// ResourceNames lists resource names in sorted order.
func (w *World) ResourceNames() []string {
	var names []string
	w.resources.Range(func(name string, _ component.Value) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// ResourceRef is a mutable handle on one resource.
type ResourceRef struct {
	container ResourceContainer
	name      string
}

// Name returns the resource name.
func (r *ResourceRef) Name() string {
	return r.name
}

// Get returns the current value.
func (r *ResourceRef) Get() (component.Value, error) {
	v, ok := r.container.Get(r.name)
	if !ok {
		return nil, errors.Wrapf(ErrResourceNotFound, "resource %q", r.name)
	}
	return v, nil
}

// Set replaces the value. The new value must keep the stored kind.
func (r *ResourceRef) Set(value component.Value) error {
	current, err := r.Get()
	if err != nil {
		return err
	}
	if err := component.Require(value, current.Kind()); err != nil {
		return errors.Wrapf(err, "set resource %q", r.name)
	}
	r.container.Set(r.name, value)
	return nil
}
