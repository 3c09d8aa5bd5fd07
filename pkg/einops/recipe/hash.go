package recipe

import (
	"fmt"
	"hash/fnv"
)

// hashRecipeKey produces the stable 64-bit digest used as the recipe cache
// key, folding in everything prepareUncached's result depends on: the
// pattern text, the operation, every axes_lengths binding in the order
// given, and ndim. Grounded on the reference's "cache on (pattern,
// operation, axes_lengths, ndim)" key, reimplemented with hash/fnv in place
// of the C++ extension's Python-style string hash (include/extension/hash.hpp
// is tied to CPython's string representation and has no Go analogue worth
// porting literally).
func hashRecipeKey(pattern string, operation Operation, axesLengths []AxisLength, ndim int) uint64 {
	h := fnv.New64a()

	fmt.Fprintf(h, "%s\x00%s\x00%d\x00", pattern, operation, ndim)

	for _, al := range axesLengths {
		fmt.Fprintf(h, "%s=%d\x00", al.Name, al.Length)
	}

	return h.Sum64()
}
