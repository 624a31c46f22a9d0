package container

import (
	"errors"
	"fmt"

	"github.com/getpup/pupsourcing-dbcontext"
)

// Resolve returns the last registration for T.
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	v, err := r.Resolve(KeyOf[T]())
	if err != nil {
		return zero, err
	}
	return cast[T](v)
}

// ResolveAll returns one instance per registration for T, in registration order.
func ResolveAll[T any](r Resolver) ([]T, error) {
	values, err := r.ResolveAll(KeyOf[T]())
	if err != nil {
		return nil, err
	}

	instances := make([]T, 0, len(values))
	for _, v := range values {
		t, err := cast[T](v)
		if err != nil {
			return nil, err
		}
		instances = append(instances, t)
	}
	return instances, nil
}

// TryResolve resolves T if it is registered.
// It reports false without an error when T has no registration.
func TryResolve[T any](r Resolver) (T, bool, error) {
	var zero T
	if !r.Contains(KeyOf[T]()) {
		return zero, false, nil
	}
	v, err := Resolve[T](r)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// IsNotRegistered reports whether err was caused by a missing registration.
func IsNotRegistered(err error) bool {
	return errors.Is(err, dbcontext.ErrServiceNotRegistered)
}

func cast[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("resolved %T is not assignable to %s", v, KeyOf[T]())
	}
	return t, nil
}
