// Package cmp has comparison helpers mainly used in tests.
package cmp

func SliceEq[T comparable](a []T, b []T) bool {
	return SliceEqWith(a, b, func(x, y T) bool { return x == y })
}

func SliceEqWith[T any, U any](a []T, b []U, pred func(a T, b U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for nth := range a {
		if !pred(a[nth], b[nth]) {
			return false
		}
	}
	return true
}

// check 2 slices have equivalent content, ignoring ordering.
//
//	SliceContentEqWith([]int{1, 2, 2}, []int{2, 1, 2}, eq)  // ==> true
//	SliceContentEqWith([]int{1, 2, 2}, []int{1, 1, 2}, eq)  // ==> false
func SliceContentEqWith[S, T any](a []S, b []T, pred func(S, T) bool) bool {
	if len(a) != len(b) {
		return false
	}

	used := make([]bool, len(b))
NEXT_A:
	for _, ae := range a {
		for i, be := range b {
			if used[i] || !pred(ae, be) {
				continue
			}
			used[i] = true
			continue NEXT_A
		}
		return false
	}
	return true
}

func SliceContentEq[T comparable](a, b []T) bool {
	return SliceContentEqWith(a, b, func(x, y T) bool { return x == y })
}

// compare pointees. nil equals only to nil.
func PEqualWith[T any](a, b *T, pred func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return pred(*a, *b)
}
