package mapper

import (
	"slices"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// service holds the type mappers of one mode together with the compiled
// collection functions of that mode. All access happens under the
// registry lock.
type service struct {
	mode        Mode
	mappers     map[Key]*typeMapper
	order       []Key // Registration order, for deterministic bulk compile
	collections map[Key]mapFunc
}

func newService(mode Mode) *service {
	return &service{
		mode:        mode,
		mappers:     make(map[Key]*typeMapper),
		collections: make(map[Key]mapFunc),
	}
}

func (s *service) add(m *typeMapper) {
	if _, ok := s.mappers[m.key]; !ok {
		s.order = append(s.order, m.key)
	}

	s.mappers[m.key] = m
}

func (s *service) remove(key Key) {
	delete(s.mappers, key)
	s.order = slices.DeleteFunc(s.order, func(k Key) bool { return k == key })
}

// compileAllLocked compiles every pending mapper of the service. Mappers are
// compiled concurrently; each compilation reads only its own configuration.
func (s *service) compileAllLocked(r *Registry) error {
	pending := make([]*typeMapper, 0, len(s.order))

	for _, k := range s.order {
		if m := s.mappers[k]; !m.isCompiled() {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		return nil
	}

	start := time.Now()
	errs := make([]error, len(pending))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, m := range pending {
		g.Go(func() error {
			_, errs[i] = r.compileLocked(m)
			return nil
		})
	}

	_ = g.Wait()

	err := multierr.Combine(errs...)

	r.logger.Debug("compiled mappings",
		zap.Stringer("mode", s.mode),
		zap.Int("count", len(pending)),
		zap.Int("failed", len(multierr.Errors(err))),
		zap.Duration("took", time.Since(start)),
	)

	return err
}

// collectionLocked returns the compiled collection function for key,
// compiling and caching it on first use.
func (s *service) collectionLocked(r *Registry, key Key) (mapFunc, error) {
	if fn, ok := s.collections[key]; ok {
		return fn, nil
	}

	fn, err := r.compileCollectionLocked(key, s.mode)
	if err != nil {
		return nil, err
	}

	s.collections[key] = fn

	return fn, nil
}

func (s *service) infos() []MapperInfo {
	out := make([]MapperInfo, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.mappers[k].info())
	}

	return out
}
