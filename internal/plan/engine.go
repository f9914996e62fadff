package plan

import (
	"context"
	"fmt"
	"reflect"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/puzpuzpuz/xsync/v3"

	"object-mapper/config"
	"object-mapper/internal/analyze"
	"object-mapper/internal/diagnostic"
	"object-mapper/node"
	"object-mapper/primitive"
)

// DefaultMaxDepth bounds the nesting of objects planned and mapped.
const DefaultMaxDepth = 64

// Engine plans and executes mappings over a configuration. It is safe for
// concurrent use.
type Engine struct {
	cfg      Configuration
	analyzer *analyze.Analyzer
	conv     *primitive.Converter
	cache    *Cache
	types    *xsync.MapOf[typesKey, MappingTypes]
	logger   glog.Logger
	maxDepth int
}

type typesKey struct {
	fp      config.Fingerprint
	source  reflect.Type
	target  reflect.Type
	runtime reflect.Type
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger reporting plan builds and handled errors.
func WithLogger(logger glog.Logger) Option {
	return func(e *Engine) {
		e.logger = glog.Ensure(logger)
	}
}

// WithMaxDepth bounds object nesting. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithAnalyzer shares a type analyzer with other components.
func WithAnalyzer(a *analyze.Analyzer) Option {
	return func(e *Engine) {
		if a != nil {
			e.analyzer = a
		}
	}
}

// NewEngine creates an engine over cfg.
func NewEngine(cfg Configuration, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		analyzer: analyze.NewAnalyzer(),
		conv:     primitive.NewConverter(primitive.CategoryAll, cfg),
		cache:    NewCache(),
		types:    xsync.NewMapOf[typesKey, MappingTypes](),
		logger:   glog.Nop(),
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Converter returns the converter of simple values.
func (e *Engine) Converter() *primitive.Converter { return e.conv }

// Cache returns the plan cache.
func (e *Engine) Cache() *Cache { return e.cache }

// Procedure returns the plan of a top level mapping from src to tgt.
func (e *Engine) Procedure(src, tgt reflect.Type, rs config.RuleSet) (*node.Procedure, error) {
	proc, err := e.procedure(Key{
		Source:      analyze.Deref(src),
		Target:      analyze.Deref(tgt),
		RuleSet:     rs,
		Fingerprint: e.cfg.Fingerprint(),
	})
	if err != nil {
		return nil, err
	}

	return proc, nil
}

func (e *Engine) procedure(key Key) (*node.Procedure, error) {
	return e.cache.GetOrBuild(key, e.build)
}

// build plans the key. A pair nothing maps yields a procedure without a
// root alongside the error.
func (e *Engine) build(key Key) (*node.Procedure, error) {
	p := newPlanner(e, key.RuleSet)

	proc := &node.Procedure{
		Source:  key.Source,
		Target:  key.Target,
		RuleSet: key.RuleSet,
		Path:    key.Path,
	}

	root, err := p.value(key.Source, key.Target, key.Path)
	if err != nil {
		e.logger.Error("mapping plan failed", "key", key.String(), "error", err)
		return nil, err
	}

	if root == nil {
		e.logger.Debug("no mapping plan", "key", key.String())

		return proc, diagnostic.NewConfigurationError(
			fmt.Sprintf("no mapping from %s to %s", analyze.TypeName(key.Source), analyze.TypeName(key.Target)),
			map[string]any{
				diagnostic.MetaPair:    analyze.PairName(key.Source, key.Target),
				diagnostic.MetaRuleSet: key.RuleSet.String(),
			},
		)
	}

	e.logger.Debug("mapping plan built", "key", key.String(), "step", root.Dispatcher().String())

	proc.Root = root

	return proc, nil
}

// Reset drops cached plans. Configuration changes replace the fingerprint
// of later plans, so Reset only reclaims memory.
func (e *Engine) Reset() {
	n := e.cache.Reset()
	e.types.Clear()

	e.logger.Info("mapping plans reset", "count", n)
}

// MappingTypes returns the types to plan a mapping of value for, declared
// as src to tgt. Interface sides resolve to the runtime source type and the
// target selected by derived pairs.
func (e *Engine) MappingTypes(src, tgt reflect.Type, value reflect.Value) MappingTypes {
	runtime := analyze.Deref(unwrap(value).Type())

	key := typesKey{fp: e.cfg.Fingerprint(), source: src, target: tgt, runtime: runtime}
	if src.Kind() != reflect.Interface && tgt.Kind() != reflect.Interface {
		key.runtime = nil
	}

	types, _ := e.types.LoadOrCompute(key, func() MappingTypes {
		if key.runtime == nil {
			return MappingTypes{Source: src, Target: tgt, RuntimeTypesAreTheSame: true}
		}

		out := MappingTypes{Source: runtime, Target: tgt}

		for _, d := range e.cfg.DerivedTypePairs(runtime, tgt) {
			if (config.TypePair{Source: d.Source}).Matches(runtime, nil) {
				out.Target = analyze.Deref(d.Target)
				return out
			}
		}

		if tgt.Kind() == reflect.Interface && (runtime.Implements(tgt) || reflect.PointerTo(runtime).Implements(tgt)) {
			out.Target = runtime
		}

		return out
	})

	return types
}

// Execute maps source into a value of type target under rs. existing is the
// target value to populate for rule sets reusing targets.
func (e *Engine) Execute(ctx context.Context, rs config.RuleSet, source any, target reflect.Type, existing reflect.Value) (reflect.Value, error) {
	v := unwrap(reflect.ValueOf(source))
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		if existing.IsValid() && existing.Type() == target {
			return existing, nil
		}

		return reflect.Zero(target), nil
	}

	c := e.newCall(ctx, rs)
	defer c.release()

	root := &node.Runtime{Source: analyze.Deref(v.Type()), Target: analyze.Deref(target)}
	c.top = root

	return c.runtime(root, frame{value: v}, existing, target)
}
