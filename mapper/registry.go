package mapper

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"typemapper/internal/typeinfo"
)

// Registry owns every mapping configuration and compiled mapping function.
// It is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	services      map[Mode]*service
	customs       map[Key]*customEntry
	caseSensitive bool
	strict        bool
	concurrency   int
	logger        *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStrict disables implicit registration of unknown type pairs.
func WithStrict() Option {
	return func(r *Registry) {
		r.strict = true
	}
}

// WithCaseSensitive sets the default member name matching of new registrations.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(r *Registry) {
		r.caseSensitive = caseSensitive
	}
}

// WithCompileConcurrency bounds the number of mappers compiled in parallel by Compile.
func WithCompileConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:      zap.NewNop(),
		concurrency: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.resetLocked()

	return r
}

// RegisterOption adjusts a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	caseSensitive bool
}

// CaseInsensitive overrides the registry default for member name matching.
func CaseInsensitive(insensitive bool) RegisterOption {
	return func(o *registerOptions) {
		o.caseSensitive = !insensitive
	}
}

// RegisterTypes registers the pair (src, dst) in both modes and returns the
// handle configuring it.
func (r *Registry) RegisterTypes(src, dst reflect.Type, opts ...RegisterOption) (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o := registerOptions{caseSensitive: r.caseSensitive}
	for _, opt := range opts {
		opt(&o)
	}

	key := KeyOf(src, dst)

	mappers, err := r.registerLocked(key, o.caseSensitive)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("registered mapping", r.pairFields(key, AllModes)...)

	return newConfig(r, key, mappers), nil
}

// Register registers the pair (S, D). See Registry.RegisterTypes.
func Register[S, D any](r *Registry, opts ...RegisterOption) (*MemberConfiguration[S, D], error) {
	cfg, err := r.RegisterTypes(reflect.TypeFor[S](), reflect.TypeFor[D](), opts...)
	if err != nil {
		return nil, err
	}

	return &MemberConfiguration[S, D]{cfg: cfg}, nil
}

func (r *Registry) registerLocked(key Key, caseSensitive bool) ([]*typeMapper, error) {
	if err := r.checkNewLocked(key); err != nil {
		return nil, err
	}

	mappers := make([]*typeMapper, 0, 2)

	for _, mode := range AllModes.modes() {
		m := newTypeMapper(key, mode, caseSensitive)
		r.services[mode].add(m)
		mappers = append(mappers, m)
	}

	return mappers, nil
}

func (r *Registry) checkNewLocked(key Key) error {
	switch {
	case key.Source == nil || key.Dest == nil:
		return newError(ErrUnsupportedType, key.Source, key.Dest, "", nil)
	case r.existsLocked(key):
		return newError(ErrAlreadyRegistered, key.Source, key.Dest, "", nil)
	case typeinfo.IsCollection(key.Source) && typeinfo.IsCollection(key.Dest):
		return newError(ErrInvalidCollectionRegistration, key.Source, key.Dest, "", nil)
	case !typeinfo.IsObject(key.Source) || !typeinfo.IsObject(key.Dest):
		return newError(ErrUnsupportedType, key.Source, key.Dest, "", errors.New("both types must be structs or pointers to structs"))
	default:
		return nil
	}
}

// existsLocked reports whether key has a mapper in every mode.
func (r *Registry) existsLocked(key Key) bool {
	for _, svc := range r.services {
		if _, ok := svc.mappers[key]; !ok {
			return false
		}
	}

	return true
}

// autoRegisterLocked registers key with default configuration. A pair that
// was registered concurrently counts as success.
func (r *Registry) autoRegisterLocked(key Key) error {
	if r.existsLocked(key) {
		return nil
	}

	if _, err := r.registerLocked(key, r.caseSensitive); err != nil {
		return newError(ErrMappingNotFound, key.Source, key.Dest, "", err)
	}

	r.logger.Warn("registered mapping implicitly", r.pairFields(key, AllModes)...)

	return nil
}

// BaseOnTypes registers (src, dst) with a copy of the configuration of the
// registered base pair (srcBase, dstBase). src must embed srcBase and dst
// must embed dstBase.
func (r *Registry) BaseOnTypes(src, srcBase, dst, dstBase reflect.Type) (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, baseKey := KeyOf(src, dst), KeyOf(srcBase, dstBase)

	if r.existsLocked(key) {
		return nil, newError(ErrAlreadyRegistered, src, dst, "", nil)
	}

	clones := make([]*typeMapper, 0, 2)

	for _, mode := range AllModes.modes() {
		base, ok := r.services[mode].mappers[baseKey]
		if !ok {
			return nil, newError(ErrBaseNotRegistered, srcBase, dstBase, "", nil)
		}

		c, err := base.clone(key)
		if err != nil {
			return nil, err
		}

		clones = append(clones, c)
	}

	for _, c := range clones {
		r.services[c.mode].add(c)
	}

	r.logger.Debug("registered derived mapping",
		append(r.pairFields(key, AllModes), zap.Stringer("base", baseKey))...)

	return newConfig(r, key, clones), nil
}

// BaseOn registers (S, D) with a copy of the configuration of (SBase, DBase).
func BaseOn[S, SBase, D, DBase any](r *Registry) (*MemberConfiguration[S, D], error) {
	cfg, err := r.BaseOnTypes(
		reflect.TypeFor[S](), reflect.TypeFor[SBase](),
		reflect.TypeFor[D](), reflect.TypeFor[DBase](),
	)
	if err != nil {
		return nil, err
	}

	return &MemberConfiguration[S, D]{cfg: cfg}, nil
}

// discard removes the type mappers of key from every mode.
func (r *Registry) discard(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, svc := range r.services {
		svc.remove(key)
	}

	r.logger.Debug("discarded mapping", r.pairFields(key, AllModes)...)
}

// MapExists reports whether the pair is registered, as a type mapper in
// either mode or as a custom mapper.
func (r *Registry) MapExists(src, dst reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := KeyOf(src, dst)
	if _, ok := r.customs[key]; ok {
		return true
	}

	for _, svc := range r.services {
		if _, ok := svc.mappers[key]; ok {
			return true
		}
	}

	return false
}

// Compile compiles every registered mapper of the given modes. Already
// compiled mappers are skipped. All failures are returned together.
func (r *Registry) Compile(mode Mode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs error
	for _, single := range mode.modes() {
		errs = multierr.Append(errs, r.services[single].compileAllLocked(r))
	}

	return errs
}

// CompileAll compiles every registered mapper in both modes.
func (r *Registry) CompileAll() error {
	return r.Compile(AllModes)
}

// compiled returns the compiled function of m, compiling it on first use.
func (r *Registry) compiled(m *typeMapper) (mapFunc, error) {
	if fn := m.compiled.Load(); fn != nil {
		return *fn, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.compileLocked(m)
}

func (r *Registry) compileLocked(m *typeMapper) (mapFunc, error) {
	if fn := m.compiled.Load(); fn != nil {
		return *fn, nil
	}

	start := time.Now()

	fn, proj, err := m.compile(r)
	if err != nil {
		r.logger.Debug("mapping compilation failed", append(r.pairFields(m.key, m.mode), zap.Error(err))...)
		return nil, err
	}

	if proj != nil {
		m.projection.Store(proj)
	}

	m.compiled.Store(&fn)

	r.logger.Debug("compiled mapping",
		append(r.pairFields(m.key, m.mode), zap.Duration("took", time.Since(start)))...)

	return fn, nil
}

// Reset drops every registration, compiled function and custom mapper.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetLocked()
	r.logger.Debug("registry reset")
}

func (r *Registry) resetLocked() {
	r.services = map[Mode]*service{
		AllocateNew:      newService(AllocateNew),
		PopulateExisting: newService(PopulateExisting),
	}
	r.customs = make(map[Key]*customEntry)
}

// CaseSensitive returns the default member name matching of new registrations.
func (r *Registry) CaseSensitive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.caseSensitive
}

// SetCaseSensitive changes the default for registrations made afterwards.
func (r *Registry) SetCaseSensitive(caseSensitive bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.caseSensitive = caseSensitive
}

// Mappers describes the registered type mappers of one mode in registration order.
func (r *Registry) Mappers(mode Mode) []MapperInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[mode]
	if !ok {
		return nil
	}

	return svc.infos()
}

// Dump returns a human-readable description of every registration.
func (r *Registry) Dump() string {
	type entry struct {
		Pair     string
		BaseOn   string
		Rules    []string
		Compiled bool
	}

	view := make(map[string][]entry)

	for _, mode := range AllModes.modes() {
		for _, info := range r.Mappers(mode) {
			e := entry{Pair: info.Key.String(), Compiled: info.Compiled}
			if info.BaseOn != nil {
				e.BaseOn = info.BaseOn.String()
			}

			for _, rule := range info.Rules {
				e.Rules = append(e.Rules, rule.String())
			}

			view[mode.String()] = append(view[mode.String()], e)
		}
	}

	for _, k := range r.customKeys() {
		view["custom"] = append(view["custom"], entry{Pair: k.String(), Compiled: true})
	}

	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

	return cfg.Sdump(view)
}

func (r *Registry) pairFields(key Key, mode Mode) []zap.Field {
	return []zap.Field{
		zap.String("source", typeName(key.Source)),
		zap.String("dest", typeName(key.Dest)),
		zap.Stringer("mode", mode),
		zap.Uint64("pair", key.Fingerprint()),
	}
}
