// internal/catalog/source.go
// Package catalog supplies candidate templates to the matcher from
// Postgres, Elasticsearch or a library file.
package catalog

import (
	"context"
	"fmt"
	"time"

	"quest-workers/internal/common/config"
	"quest-workers/internal/common/database"
	"quest-workers/internal/common/logger"
	"quest-workers/internal/models"
	"quest-workers/pkg/library"
)

// Source returns candidate templates. theme is only a hint a source may use
// to narrow the candidates; final ranking belongs to the matcher.
type Source interface {
	Templates(ctx context.Context, theme string) ([]models.Template, error)
	Name() string
}

// Deps are the clients a source may need. Unused ones can be nil.
type Deps struct {
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
}

// NewSource picks the implementation named by cfg.Source.
func NewSource(cfg config.CatalogConfig, deps Deps, log logger.Logger) (Source, error) {
	switch cfg.Source {
	case config.CatalogSourcePostgres:
		if deps.Postgres == nil {
			return nil, fmt.Errorf("postgres catalog needs a postgres client")
		}
		var cache *database.RedisClient
		if cfg.CacheTTL > 0 {
			cache = deps.Redis
		}
		return NewPostgresSource(deps.Postgres, cache, config.Seconds(cfg.CacheTTL), log), nil

	case config.CatalogSourceElasticsearch:
		if deps.Elasticsearch == nil {
			return nil, fmt.Errorf("elasticsearch catalog needs an elasticsearch client")
		}
		return NewElasticsearchSource(deps.Elasticsearch, cfg.Index, cfg.MaxResults, log), nil

	case config.CatalogSourceFile:
		lib, err := library.Load(cfg.LibraryPath)
		if err != nil {
			return nil, err
		}
		return NewStaticSource(lib.Templates), nil

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// StaticSource serves a fixed template list, typically a library file.
type StaticSource struct {
	templates []models.Template
}

func NewStaticSource(templates []models.Template) *StaticSource {
	return &StaticSource{templates: cloneTemplates(templates)}
}

func (s *StaticSource) Name() string { return config.CatalogSourceFile }

func (s *StaticSource) Templates(_ context.Context, _ string) ([]models.Template, error) {
	return cloneTemplates(s.templates), nil
}

func cloneTemplates(in []models.Template) []models.Template {
	out := make([]models.Template, len(in))
	for i, tpl := range in {
		tpl.Mapping = models.TemplateMapping{
			SecondaryThemes: append([]string(nil), tpl.Mapping.SecondaryThemes...),
			GeographyLevel:  append([]string(nil), tpl.Mapping.GeographyLevel...),
			TargetGroups:    append([]string(nil), tpl.Mapping.TargetGroups...),
		}
		out[i] = tpl
	}
	return out
}

// timed records how long a catalog read took.
func timed(log logger.Logger, source string, start time.Time, count int) {
	log.Debug("catalog read", map[string]interface{}{
		"source":     source,
		"templates":  count,
		"durationMs": time.Since(start).Milliseconds(),
	})
}
