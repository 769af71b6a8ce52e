// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quest-workers/internal/common/config"
	"quest-workers/internal/common/database"
	"quest-workers/internal/common/logger"
	"quest-workers/internal/common/metrics"
	"quest-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// TemplatesCacheKey holds the cached active template list.
const TemplatesCacheKey = "quest:templates:all"

const (
	listQuery = `SELECT id, name, theme, mapping FROM templates WHERE active = true ORDER BY sort_order, id`

	upsertQuery = `INSERT INTO templates (id, name, theme, mapping, active, sort_order)
VALUES ($1, $2, $3, $4, true, $5)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, theme = EXCLUDED.theme,
mapping = EXCLUDED.mapping, active = true, sort_order = EXCLUDED.sort_order`
)

// PostgresSource reads active templates from the templates table.
type PostgresSource struct {
	db    *database.PostgresClient
	cache *database.RedisClient
	ttl   time.Duration
	log   logger.Logger
}

// NewPostgresSource builds the source. A nil cache disables caching.
func NewPostgresSource(db *database.PostgresClient, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *PostgresSource {
	return &PostgresSource{
		db:    db,
		cache: cache,
		ttl:   ttl,
		log:   log.WithFields(map[string]interface{}{"component": "catalog", "source": config.CatalogSourcePostgres}),
	}
}

func (s *PostgresSource) Name() string { return config.CatalogSourcePostgres }

// Templates returns every active template. The theme hint is not used:
// the full list is small and cached as a whole.
func (s *PostgresSource) Templates(ctx context.Context, _ string) ([]models.Template, error) {
	start := time.Now()

	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	rows, err := s.db.Query(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var tpl models.Template
		var name sql.NullString
		var mapping []byte
		if err := rows.Scan(&tpl.ID, &name, &tpl.Theme, &mapping); err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		tpl.Name = name.String

		if len(mapping) > 0 {
			if err := json.Unmarshal(mapping, &tpl.Mapping); err != nil {
				s.log.Warn("template mapping is malformed, using empty mapping", map[string]interface{}{
					"templateId": tpl.ID,
					"error":      err.Error(),
				})
				tpl.Mapping = models.TemplateMapping{}
			}
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	s.toCache(ctx, templates)
	timed(s.log, s.Name(), start, len(templates))
	return templates, nil
}

// Upsert writes templates in one transaction, keeping their order as
// sort_order, and drops the cached list.
func (s *PostgresSource) Upsert(ctx context.Context, templates []models.Template) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i, tpl := range templates {
			mapping, err := json.Marshal(tpl.Mapping)
			if err != nil {
				return fmt.Errorf("encode mapping of %s: %w", tpl.ID, err)
			}
			if _, err := tx.ExecContext(ctx, upsertQuery, tpl.ID, tpl.Name, tpl.Theme, mapping, i); err != nil {
				return fmt.Errorf("upsert template %s: %w", tpl.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.Invalidate(ctx)
}

func (s *PostgresSource) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Client.Del(ctx, TemplatesCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate template cache: %w", err)
	}
	return nil
}

func (s *PostgresSource) fromCache(ctx context.Context) ([]models.Template, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}

	val, err := s.cache.Client.Get(ctx, TemplatesCacheKey).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("templates", "miss").Inc()
		return nil, false
	case err != nil:
		metrics.CacheLookups.WithLabelValues("templates", "error").Inc()
		s.log.Warn("template cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var templates []models.Template
	if err := json.Unmarshal(val, &templates); err != nil {
		metrics.CacheLookups.WithLabelValues("templates", "error").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("templates", "hit").Inc()
	return templates, true
}

func (s *PostgresSource) toCache(ctx context.Context, templates []models.Template) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(templates)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, TemplatesCacheKey, data, s.ttl).Err(); err != nil {
		s.log.Warn("template cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
