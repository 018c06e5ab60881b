package container

import "fmt"

// Resolve gets the single instance bound under id and asserts its type.
func Resolve[T any](r Resolver, id any) (T, error) {
	var zero T
	v, err := r.Get(id)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%v: bound value is %T, not %T", id, v, zero)
	}
	return out, nil
}

// ResolveAll gets every instance bound under id and asserts their type.
func ResolveAll[T any](r Resolver, id any) ([]T, error) {
	vs, err := r.GetAll(id)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vs))
	for i, v := range vs {
		t, ok := v.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("binding %d of %v: bound value is %T, not %T", i, id, v, zero)
		}
		out = append(out, t)
	}
	return out, nil
}
