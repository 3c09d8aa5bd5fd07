package recipe

import (
	"fmt"
	"hash/fnv"

	"github.com/dorpxam/einops-go/pkg/einops/errs"
	"github.com/dorpxam/einops-go/pkg/einops/lrucache"
)

// CookedRecipe is the shape-specialized plan produced by Cook: the ordered
// primitive calls realizing one TransformRecipe against one concrete input
// shape. Optional slots are nil/empty when the corresponding step is a
// no-op, so a caller can skip it entirely rather than apply an identity
// reshape or permutation.
type CookedRecipe struct {
	InitShape            []int
	Permutation          []int
	ReducedAxes          []int
	AddedAxesWithLengths map[int]int
	FinalShape           []int
	NAxesAfterAdding     int
}

var cookedCache = lrucache.New[uint64, *CookedRecipe](1024)

// CookedCache exposes the process-wide cooked-recipe cache.
func CookedCache() *lrucache.Cache[uint64, *CookedRecipe] {
	return cookedCache
}

// Cook specializes rec against shape and the caller's axes_lengths,
// producing (or fetching from cache) a CookedRecipe. This is C3.
func Cook(rec *TransformRecipe, shape []int, axesLengths []AxisLength) (*CookedRecipe, error) {
	hash := hashCookKey(rec.RecipeHash, shape, axesLengths)
	if cached, ok := cookedCache.Get(hash); ok {
		return cached, nil
	}

	cooked, err := cookUncached(rec, shape, axesLengths)
	if err != nil {
		return nil, err
	}

	cookedCache.Put(hash, cooked)

	return cooked, nil
}

func cookUncached(rec *TransformRecipe, shape []int, axesLengths []AxisLength) (*CookedRecipe, error) {
	if len(shape) != len(rec.inputComposition) {
		return nil, errs.New(errs.RankMismatch, "wrong shape: expected %d dims, got %d", len(rec.inputComposition), len(shape)).WithShape(shape)
	}

	lengths := append([]int(nil), rec.ElementaryAxesLengths...)

	for _, al := range axesLengths {
		if pos, ok := rec.AxisNameToElementaryAxis[al.Name]; ok {
			lengths[pos] = al.Length
		}
	}

	needInitReshape := false

	for i, comp := range rec.inputComposition {
		size := shape[i]

		switch {
		case len(comp.Known) == 0 && len(comp.Unknown) == 1:
			lengths[comp.Unknown[0]] = size
		default:
			known := 1
			for _, pos := range comp.Known {
				known *= lengths[pos]
			}

			if len(comp.Unknown) == 0 {
				if size != known {
					return nil, errs.New(
						errs.ShapeMismatchExact,
						"shape mismatch: dimension %d has size %d, expected %d", i, size, known,
					).WithShape(shape).WithConflict("expected exactly %d", known)
				}
			} else {
				if known == 0 || size%known != 0 {
					return nil, errs.New(
						errs.ShapeMismatchDivisibility,
						"shape mismatch: dimension %d has size %d, not divisible by %d", i, size, known,
					).WithShape(shape).WithConflict("known factor %d does not divide %d", known, size)
				}

				lengths[comp.Unknown[0]] = size / known
			}
		}

		if len(comp.Known)+len(comp.Unknown) != 1 {
			needInitReshape = true
		}
	}

	cooked := &CookedRecipe{}

	if needInitReshape {
		cooked.InitShape = append([]int(nil), lengths[:len(rec.AxesPermutation)]...)
	}

	if !isIdentity(rec.AxesPermutation) {
		cooked.Permutation = append([]int(nil), rec.AxesPermutation...)
	}

	if rec.FirstReducedAxis < len(rec.AxesPermutation) {
		reduced := make([]int, 0, len(rec.AxesPermutation)-rec.FirstReducedAxis)
		for i := rec.FirstReducedAxis; i < len(rec.AxesPermutation); i++ {
			reduced = append(reduced, i)
		}

		cooked.ReducedAxes = reduced
	}

	needFinalReshape := false
	finalShape := make([]int, len(rec.OutputCompositeAxes))

	for i, group := range rec.OutputCompositeAxes {
		size := 1
		for _, pos := range group {
			size *= lengths[pos]
		}

		finalShape[i] = size

		if len(group) != 1 {
			needFinalReshape = true
		}
	}

	if needFinalReshape {
		cooked.FinalShape = finalShape
	}

	if len(rec.AddedAxes) > 0 {
		added := make(map[int]int, len(rec.AddedAxes))
		for pos, slot := range rec.AddedAxes {
			added[pos] = lengths[slot]
		}

		cooked.AddedAxesWithLengths = added
	}

	cooked.NAxesAfterAdding = len(rec.AddedAxes) + len(rec.AxesPermutation)

	return cooked, nil
}

func isIdentity(perm []int) bool {
	for i, p := range perm {
		if i != p {
			return false
		}
	}

	return true
}

func hashCookKey(recipeHash uint64, shape []int, axesLengths []AxisLength) uint64 {
	h := fnv.New64a()

	fmt.Fprintf(h, "%d\x00%v\x00", recipeHash, shape)

	for _, al := range axesLengths {
		fmt.Fprintf(h, "%s=%d\x00", al.Name, al.Length)
	}

	return h.Sum64()
}
