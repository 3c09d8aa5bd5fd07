package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dorpxam/einops-go/internal/config"
	"github.com/dorpxam/einops-go/numeric"
	"github.com/dorpxam/einops-go/pkg/einops"
	"github.com/dorpxam/einops-go/pkg/einops/backend"
	"github.com/dorpxam/einops-go/pkg/einops/recipe"
	"github.com/dorpxam/einops-go/tensor"
)

func newBackend(cfg *config.Config) *backend.Backend[float64] {
	recipe.RecipeCache().SetCapacity(cfg.RecipeCacheCapacity)
	recipe.CookedCache().SetCapacity(cfg.CookedCacheCapacity)

	return backend.New[float64](numeric.Float64Ops{}, true)
}

func parseShapeFlag(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("--shape is required")
	}

	parts := strings.Split(s, ",")
	shape := make([]int, len(parts))

	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid shape dimension %q: %w", p, err)
		}

		shape[i] = n
	}

	return shape, nil
}

func parseAxisLengthsFlag(s string) ([]einops.AxisLength, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]einops.AxisLength, 0, len(parts))

	for _, p := range parts {
		nameLen := strings.SplitN(p, "=", 2)
		if len(nameLen) != 2 {
			return nil, fmt.Errorf("invalid axis binding %q, expected name=length", p)
		}

		n, err := strconv.Atoi(strings.TrimSpace(nameLen[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid axis length in %q: %w", p, err)
		}

		out = append(out, einops.Axis(strings.TrimSpace(nameLen[0]), n))
	}

	return out, nil
}

// readTensor reads whitespace-separated floats from stdin, enough to fill
// shape, and builds a row-major tensor from them.
func readTensor(shape []int) (*tensor.TensorNumeric[float64], error) {
	size := 1
	for _, d := range shape {
		size *= d
	}

	data := make([]float64, 0, size)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Split(bufio.ScanWords)

	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid input value %q: %w", scanner.Text(), err)
		}

		data = append(data, v)
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, err
	}

	if len(data) != size {
		return nil, fmt.Errorf("expected %d values for shape %v, got %d", size, shape, len(data))
	}

	return tensor.New(shape, data)
}

func writeTensor(t *tensor.TensorNumeric[float64]) {
	fmt.Printf("shape: %v\n", t.Shape())

	data := t.Data()
	strs := make([]string, len(data))

	for i, v := range data {
		strs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	fmt.Println(strings.Join(strs, " "))
}

type rearrangeCommand struct{}

func (c *rearrangeCommand) Name() string        { return "rearrange" }
func (c *rearrangeCommand) Description() string { return "reshape/transpose a tensor read from stdin" }

func (c *rearrangeCommand) Run(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rearrange", flag.ExitOnError)
	cfg.BindFlags(fs)

	pattern := fs.String("pattern", "", "einops pattern, e.g. \"h w c -> c h w\"")
	shapeFlag := fs.String("shape", "", "comma-separated input shape, e.g. 2,3,4")
	axesFlag := fs.String("axes", "", "comma-separated name=length bindings")

	if err := fs.Parse(args); err != nil {
		return err
	}

	shape, err := parseShapeFlag(*shapeFlag)
	if err != nil {
		return err
	}

	axes, err := parseAxisLengthsFlag(*axesFlag)
	if err != nil {
		return err
	}

	in, err := readTensor(shape)
	if err != nil {
		return err
	}

	bk := newBackend(cfg)

	out, err := einops.Rearrange(bk, in, *pattern, axes...)
	if err != nil {
		return err
	}

	writeTensor(out)

	return nil
}

type repeatCommand struct{}

func (c *repeatCommand) Name() string { return "repeat" }
func (c *repeatCommand) Description() string {
	return "broadcast a tensor read from stdin, introducing new axes"
}

func (c *repeatCommand) Run(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("repeat", flag.ExitOnError)
	cfg.BindFlags(fs)

	pattern := fs.String("pattern", "", "einops pattern, e.g. \"h w -> h w c\"")
	shapeFlag := fs.String("shape", "", "comma-separated input shape")
	axesFlag := fs.String("axes", "", "comma-separated name=length bindings for new axes")

	if err := fs.Parse(args); err != nil {
		return err
	}

	shape, err := parseShapeFlag(*shapeFlag)
	if err != nil {
		return err
	}

	axes, err := parseAxisLengthsFlag(*axesFlag)
	if err != nil {
		return err
	}

	in, err := readTensor(shape)
	if err != nil {
		return err
	}

	bk := newBackend(cfg)

	out, err := einops.Repeat(bk, in, *pattern, axes...)
	if err != nil {
		return err
	}

	writeTensor(out)

	return nil
}

type reduceCommand struct{}

func (c *reduceCommand) Name() string        { return "reduce" }
func (c *reduceCommand) Description() string { return "apply a reduction to a tensor read from stdin" }

func (c *reduceCommand) Run(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reduce", flag.ExitOnError)
	cfg.BindFlags(fs)

	pattern := fs.String("pattern", "", "einops pattern, e.g. \"b h w c -> b c\"")
	shapeFlag := fs.String("shape", "", "comma-separated input shape")
	axesFlag := fs.String("axes", "", "comma-separated name=length bindings")
	op := fs.String("op", "sum", "one of min, max, sum, mean, prod, any, all")

	if err := fs.Parse(args); err != nil {
		return err
	}

	shape, err := parseShapeFlag(*shapeFlag)
	if err != nil {
		return err
	}

	axes, err := parseAxisLengthsFlag(*axesFlag)
	if err != nil {
		return err
	}

	in, err := readTensor(shape)
	if err != nil {
		return err
	}

	bk := newBackend(cfg)

	out, err := einops.Reduce(bk, in, *pattern, recipe.Operation(*op), axes...)
	if err != nil {
		return err
	}

	writeTensor(out)

	return nil
}

type describeCommand struct{}

func (c *describeCommand) Name() string { return "describe" }
func (c *describeCommand) Description() string {
	return "bind a one-sided pattern's names against a shape (parse_shape), no stdin needed"
}

func (c *describeCommand) Run(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	cfg.BindFlags(fs)

	pattern := fs.String("pattern", "", "space-separated axis names, e.g. \"batch height width channels\"")
	shapeFlag := fs.String("shape", "", "comma-separated shape to bind against")
	maxEllipsisDims := fs.Int("max-ellipsis-dims", 0, "if set, treat --pattern as a full \"lhs -> rhs\" rearrange pattern and print the permutation for every plausible rank up to this many extra ellipsis dimensions, instead of binding --shape")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *maxEllipsisDims > 0 {
		return describeAllDims(*pattern, *maxEllipsisDims)
	}

	shape, err := parseShapeFlag(*shapeFlag)
	if err != nil {
		return err
	}

	size := 1
	for _, d := range shape {
		size *= d
	}

	zero, err := tensor.New(shape, make([]float64, size))
	if err != nil {
		return err
	}

	bk := newBackend(cfg)

	dims, err := einops.ParseShape(bk, zero, *pattern)
	if err != nil {
		return err
	}

	for name, length := range dims {
		fmt.Printf("%s = %d\n", name, length)
	}

	return nil
}

// describeAllDims prints the permutation recipe.PrepareForAllDims finds for
// each rank an ellipsis in pattern could plausibly take on, without needing
// an actual tensor to infer ndim from.
func describeAllDims(pattern string, maxEllipsisDims int) error {
	recipes, err := recipe.PrepareForAllDims(pattern, recipe.Rearrange, nil, maxEllipsisDims)
	if err != nil {
		return err
	}

	ndims := make([]int, 0, len(recipes))
	for ndim := range recipes {
		ndims = append(ndims, ndim)
	}

	sort.Ints(ndims)

	for _, ndim := range ndims {
		fmt.Printf("ndim=%d permutation=%v\n", ndim, recipes[ndim].AxesPermutation)
	}

	return nil
}
