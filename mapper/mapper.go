// Package mapper maps objects onto objects of other types: structs, slices,
// maps and string keyed dictionaries, in any nesting.
//
//	dto, err := mapper.ToANew[OrderDTO](m, order)
//	err = m.Map(order).OnTo(&existing)
//
// Mapping plans are built once per type pair and rule set and cached by the
// Mapper. Rules configured on its store change the plans built afterwards.
package mapper

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"object-mapper/config"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/plan"
	"object-mapper/node"
)

// Mapper maps objects with the rules of its store. It is safe for concurrent
// use.
type Mapper struct {
	store  *config.Store
	engine *plan.Engine
	logger glog.Logger
}

// New creates a mapper.
func New(opts ...Option) *Mapper {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := glog.Ensure(cfg.Logger)

	store := cfg.Store
	if store == nil {
		store = config.NewStore(config.WithLogger(logger))
	}

	return &Mapper{
		store:  store,
		logger: logger,
		engine: plan.NewEngine(store, plan.WithLogger(logger), plan.WithMaxDepth(cfg.MaxDepth)),
	}
}

// Store returns the rules of the mapper.
func (m *Mapper) Store() *config.Store { return m.store }

// LoadFile applies a YAML mapping file, resolving the type and func names it
// uses through reg.
func (m *Mapper) LoadFile(path string, reg *config.Registry) error {
	return m.store.ApplyFile(path, reg)
}

// Map starts a mapping of source.
func (m *Mapper) Map(source any) *Mapping {
	return m.MapContext(context.Background(), source)
}

// MapContext starts a mapping of source. ctx reaches the logger.
func (m *Mapper) MapContext(ctx context.Context, source any) *Mapping {
	return &Mapping{mapper: m, ctx: ctx, source: source}
}

// Plan returns the plan of mapping src to tgt under rs.
func (m *Mapper) Plan(src, tgt reflect.Type, rs config.RuleSet) (*node.Procedure, error) {
	return m.engine.Procedure(src, tgt, rs)
}

// Explain renders the plan of mapping src to tgt under rs.
func (m *Mapper) Explain(src, tgt reflect.Type, rs config.RuleSet) (string, error) {
	proc, err := m.Plan(src, tgt, rs)
	if err != nil {
		return "", err
	}

	return node.Render(proc), nil
}

// Validate checks that every target member of tgt is populated when mapping
// from src under rs, and that enums map completely. It returns a validation
// error listing the problems, nil when there are none.
func (m *Mapper) Validate(src, tgt reflect.Type, rs config.RuleSet) error {
	return m.Diagnostics(src, tgt, rs).Error()
}

// Diagnostics returns the findings of Validate.
func (m *Mapper) Diagnostics(src, tgt reflect.Type, rs config.RuleSet) *diagnostic.Diagnostics {
	return m.engine.Validate(src, tgt, rs)
}

// Reset drops the cached plans.
func (m *Mapper) Reset() {
	m.engine.Reset()
}

// Mapping is a pending mapping of a source value.
type Mapping struct {
	mapper *Mapper
	ctx    context.Context
	source any
}

// ToANew maps the source into a new value of type t.
func (p *Mapping) ToANew(t reflect.Type) (any, error) {
	out, err := p.mapper.engine.Execute(p.ctx, config.CreateNew, p.source, t, reflect.Value{})
	if err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

// OnTo merges the source into target, a non-nil pointer: members of target
// that already have a value are kept.
func (p *Mapping) OnTo(target any) error {
	return p.into(config.Merge, target)
}

// Over overwrites target, a non-nil pointer, with the source.
func (p *Mapping) Over(target any) error {
	return p.into(config.Overwrite, target)
}

func (p *Mapping) into(rs config.RuleSet, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return diagnostic.NewConfigurationError(
			fmt.Sprintf("%s target must be a non-nil pointer, got %T", rs, target),
			map[string]any{diagnostic.MetaRuleSet: rs.String()},
		)
	}

	out, err := p.mapper.engine.Execute(p.ctx, rs, p.source, ptr.Type(), ptr)
	if err != nil {
		return err
	}

	if !out.IsNil() && out.Pointer() != ptr.Pointer() {
		ptr.Elem().Set(out.Elem())
	}

	return nil
}

// ToANew maps source into a new T.
func ToANew[T any](m *Mapper, source any) (T, error) {
	out, err := m.engine.Execute(context.Background(), config.CreateNew, source, reflect.TypeFor[T](), reflect.Value{})
	if err != nil {
		var zero T
		return zero, err
	}

	t, _ := out.Interface().(T)

	return t, nil
}

// OnTo merges source into target and returns the result. Pointer targets are
// populated in place.
func OnTo[T any](m *Mapper, source any, target T) (T, error) {
	return into(m, config.Merge, source, target)
}

// Over overwrites target with source and returns the result. Pointer targets
// are populated in place.
func Over[T any](m *Mapper, source any, target T) (T, error) {
	return into(m, config.Overwrite, source, target)
}

func into[T any](m *Mapper, rs config.RuleSet, source any, target T) (T, error) {
	existing := reflect.ValueOf(&target).Elem()

	out, err := m.engine.Execute(context.Background(), rs, source, reflect.TypeFor[T](), existing)
	if err != nil {
		return target, err
	}

	t, _ := out.Interface().(T)

	return t, nil
}

var (
	defaultMu     sync.Mutex
	defaultMapper *Mapper
)

// Default returns the shared mapper, creating it on first use.
func Default() *Mapper {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultMapper == nil {
		defaultMapper = New()
	}

	return defaultMapper
}

// ResetDefault discards the shared mapper together with its rules and plans.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultMapper = nil
}

// Map starts a mapping of source with the shared mapper.
func Map(source any) *Mapping {
	return Default().Map(source)
}
