// Package envelope wraps successful responses as
//
//	{"success": true, "message": "...", "count": 3, "data": ...}
//
// message and count are present only when they are set.
package envelope

type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    T      `json:"data"`
}

func Of[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

func WithMessage[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Success: true, Message: message, Data: data}
}

// List wraps items with their count. nil items are written as an empty array.
func List[T any](items []T) Envelope[[]T] {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Envelope[[]T]{Success: true, Count: &n, Data: items}
}
