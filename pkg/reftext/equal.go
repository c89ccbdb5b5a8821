package reftext

import "math"

// Equal reports whether a and b are structurally equal: the same kinds with
// the same scalars, arrays element by element, and objects with the same keys
// mapping to equal values regardless of key order. Cycles are compared by
// assuming a pair of containers equal while it is being compared. Numbers
// compare by value, so int 1 equals float64 1; NaN equals NaN. Values outside
// the data model are never equal to anything.
func Equal(a, b any) bool {
	type pair struct{ a, b identity }
	seen := make(map[pair]bool)
	stack := [][2]any{{a, b}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := top[0], top[1]

		tx, cx := classify(x)
		ty, cy := classify(y)
		if cx != classRepresentable || cy != classRepresentable || tx != ty {
			return false
		}

		switch tx {
		case TypeNull, TypeUndefined:
		case TypeBoolean:
			if x.(bool) != y.(bool) {
				return false
			}
		case TypeNumber:
			fx, fy := toFloat(x), toFloat(y)
			if fx != fy && !(math.IsNaN(fx) && math.IsNaN(fy)) {
				return false
			}
		case TypeBigInt:
			if bigIntOf(x).Cmp(bigIntOf(y)) != 0 {
				return false
			}
		case TypeString:
			if x.(string) != y.(string) {
				return false
			}
		case TypeDate:
			dx, okx := dateValue(x)
			dy, oky := dateValue(y)
			if okx != oky || (okx && dx.UnixMilli() != dy.UnixMilli()) {
				return false
			}
		case TypeArray, TypeObject:
			ix, _ := identityOf(x)
			iy, _ := identityOf(y)
			p := pair{ix, iy}
			if seen[p] {
				continue
			}
			seen[p] = true

			ex, ey := Entries(x), Entries(y)
			if len(ex) != len(ey) {
				return false
			}
			if tx == TypeArray {
				for i := range ex {
					stack = append(stack, [2]any{ex[i].Value, ey[i].Value})
				}
				continue
			}
			byKey := make(map[string]any, len(ey))
			for _, e := range ey {
				byKey[e.Piece.Key] = e.Value
			}
			for _, e := range ex {
				other, ok := byKey[e.Piece.Key]
				if !ok {
					return false
				}
				stack = append(stack, [2]any{e.Value, other})
			}
		}
	}
	return true
}
