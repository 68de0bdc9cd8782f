package transform

import (
	"context"
	"fmt"
	"picturebot/internal/core/domain"
	"sort"

	"github.com/rs/zerolog/log"
)

type ApplyFunc func(ctx context.Context, img *domain.Image, m domain.Manipulation) (*domain.Image, error)

type ConvertFunc func(ctx context.Context, img *domain.Image, format string) (*domain.Image, error)

// Operation is a manipulation the registry can dispatch to.
type Operation struct {
	Name string
	// SizeArgs lists the argument positions holding pixel sizes. nil means every
	// integer argument is a size.
	SizeArgs []int
	Apply    ApplyFunc
}

// Registry resolves manipulation names to operations.
type Registry struct {
	operations map[string]Operation
	convert    ConvertFunc
}

func NewRegistry(convert ConvertFunc, operations ...Operation) *Registry {
	r := &Registry{operations: make(map[string]Operation), convert: convert}
	for _, op := range operations {
		r.Register(op)
	}
	return r
}

func (r *Registry) Register(op Operation) {
	log.Debug().Str("operation", op.Name).Msg("registering manipulation")
	r.operations[op.Name] = op
}

func (r *Registry) Transform(ctx context.Context, img *domain.Image, m domain.Manipulation) (*domain.Image, error) {
	if m.Method == domain.MethodConvert {
		format, err := domain.StringArgument(m.Arguments, 0)
		if err != nil {
			return nil, err
		}
		return r.Convert(ctx, img, format)
	}

	op, ok := r.operations[m.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMethod, m.Method)
	}

	return op.Apply(ctx, img, m)
}

func (r *Registry) Convert(ctx context.Context, img *domain.Image, format string) (*domain.Image, error) {
	if r.convert == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMethod, domain.MethodConvert)
	}
	return r.convert(ctx, img, format)
}

// Methods returns the names that can appear in variant identifiers.
func (r *Registry) Methods() []string {
	methods := make([]string, 0, len(r.operations)+1)
	for name := range r.operations {
		methods = append(methods, name)
	}
	methods = append(methods, domain.MethodExtRewrite)
	sort.Strings(methods)
	return methods
}

func (r *Registry) SizeArguments(method string) ([]int, bool) {
	op, ok := r.operations[method]
	if !ok || op.SizeArgs == nil {
		return nil, false
	}
	return op.SizeArgs, true
}
