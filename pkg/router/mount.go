package router

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Mount registers a handler for every route under the tree described by
// spec. Registrations happen in traversal order, one per qualifying file.
//
// app and loader are checked before the filesystem is touched.
func Mount(ctx context.Context, app Router, loader Loader, spec Spec, opts ...Option) error {
	if isNil(app) {
		return ErrNilRouter
	}
	if isNil(loader) {
		return ErrNilLoader
	}
	return NewScanner(spec, opts...).Mount(ctx, app, loader)
}

// Mount registers every discovered route with app, using loader to obtain
// the handlers. The first load error aborts the traversal; routes mounted
// before it stay registered.
func (s *Scanner) Mount(ctx context.Context, app Router, loader Loader) error {
	if isNil(app) {
		return ErrNilRouter
	}
	if isNil(loader) {
		return ErrNilLoader
	}

	ctx, span := s.startSpan(ctx, "router.Mount")
	defer span.End()

	start := time.Now()
	mounted := 0
	err := s.walk(ctx, func(route DiscoveredRoute) error {
		h, err := loader.Load(route)
		if err != nil {
			return fmt.Errorf("loading %s: %w", route.SourceFile, err)
		}
		for _, decorate := range s.decorators {
			h = decorate(route.Path, h)
		}

		app.Register(route.Path, h)
		mounted++
		s.logger.Debug("mounted route", "route", route.Path, "file", route.SourceFile)
		if s.observer != nil {
			s.observer.RouteMounted(route.Path)
		}
		return nil
	})
	s.finish(span, start, mounted, err)

	return err
}

// isNil reports whether v is nil or an interface holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
