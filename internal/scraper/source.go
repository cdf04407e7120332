package scraper

import (
	"context"
	"sort"
	"strings"

	"assignment-scanner/internal/domain/job"
	"assignment-scanner/internal/domain/scanning"

	"go.uber.org/zap"
)

// Source is one scrape target. Scrape returns every posting the source
// currently lists that passes the params filters; it never writes to storage.
type Source interface {
	Name() string
	Scrape(ctx context.Context) ([]job.PostingIn, error)
}

// Factory builds a Source bound to one merged parameter set.
type Factory func(params scanning.ScanParams, log *zap.Logger) Source

type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, f Factory) {
	if r == nil || f == nil {
		return
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	r.factories[name] = f
}

// Names returns the registered source names in stable order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Build(name string, params scanning.ScanParams, log *zap.Logger) (Source, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return f(params, log), true
}

// DefaultRegistry registers every built-in portal adapter.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(SourceBrainville, func(params scanning.ScanParams, log *zap.Logger) Source {
		return NewBrainvilleScraper(params, log)
	})
	r.Register(SourceCinode, func(params scanning.ScanParams, log *zap.Logger) Source {
		return NewCinodeScraper(params, log)
	})
	r.Register(SourceVerama, func(params scanning.ScanParams, log *zap.Logger) Source {
		return NewVeramaScraper(params, log)
	})
	return r
}
