package attendance

import "encoding/json"

// Optional tracks whether a JSON field was sent at all, sent as null, or sent
// with a value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some builds an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Present reports whether the field carried a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}
