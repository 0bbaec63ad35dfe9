package girder

import "reflect"

// Usage wraps a component in a compile-time tag so that one entity can carry
// several instances of the same component shape under distinct logical roles,
// say a front and a back buffer. The world keys component storage by
// reflect.Type, so Usage[Front, C] and Usage[Back, C] are fully independent
// columns; the tag itself occupies no storage and costs nothing at runtime.
//
// Tag types are empty structs declared by the consumer:
//
//	type Uniform struct{}
//	buf := girder.Tag[Uniform](gpu.NewBufferCell())
type Usage[U, C any] struct {
	Value C
}

// Tag wraps c in the usage tag U.
func Tag[U, C any](c C) Usage[U, C] {
	return Usage[U, C]{Value: c}
}

// UsageName returns a readable name for a tag type, for diagnostics.
func UsageName[U any]() string {
	return reflect.TypeFor[U]().String()
}
