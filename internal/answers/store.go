// Package answers loads a project's wizard answers from Postgres, with a
// Redis read-through cache in front.
package answers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quest-workers/internal/common/logger"
	"quest-workers/internal/common/metrics"
	"quest-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

var ErrProjectIDRequired = errors.New("project id is required")

const loadQuery = `SELECT field, value FROM project_answers WHERE project_id = $1 ORDER BY field`

// CacheKey is the Redis key holding a project's cached answers.
func CacheKey(projectID string) string {
	return "quest:answers:" + projectID
}

type Store struct {
	db    *sql.DB
	cache redis.Cmdable
	ttl   time.Duration
	log   logger.Logger
}

// NewStore builds a store. A nil cache or a zero ttl disables caching.
func NewStore(db *sql.DB, cache redis.Cmdable, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		db:    db,
		cache: cache,
		ttl:   ttl,
		log:   log.WithFields(map[string]interface{}{"component": "answers"}),
	}
}

// Load returns every answer recorded for the project. A project with no
// rows yields an empty context, not an error.
func (s *Store) Load(ctx context.Context, projectID string) (models.AnswerContext, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, ErrProjectIDRequired
	}

	if cached, ok := s.fromCache(ctx, projectID); ok {
		return cached, nil
	}

	rows, err := s.db.QueryContext(ctx, loadQuery, projectID)
	if err != nil {
		return nil, fmt.Errorf("query answers for %s: %w", projectID, err)
	}
	defer rows.Close()

	answers := models.AnswerContext{}
	for rows.Next() {
		var field string
		var raw []byte
		if err := rows.Scan(&field, &raw); err != nil {
			return nil, fmt.Errorf("scan answer row: %w", err)
		}

		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			s.log.Warn("skipping undecodable answer", map[string]interface{}{
				"projectId": projectID,
				"field":     field,
				"error":     err.Error(),
			})
			continue
		}
		answers[field] = normalize(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers for %s: %w", projectID, err)
	}

	s.toCache(ctx, projectID, answers)
	return answers, nil
}

// Invalidate drops the cached answers after the wizard saves.
func (s *Store) Invalidate(ctx context.Context, projectID string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, CacheKey(projectID)).Err(); err != nil {
		return fmt.Errorf("invalidate answers for %s: %w", projectID, err)
	}
	return nil
}

func (s *Store) fromCache(ctx context.Context, projectID string) (models.AnswerContext, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return nil, false
	}

	val, err := s.cache.Get(ctx, CacheKey(projectID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("answers", "miss").Inc()
		return nil, false
	case err != nil:
		metrics.CacheLookups.WithLabelValues("answers", "error").Inc()
		s.log.Warn("answer cache read failed", map[string]interface{}{"projectId": projectID, "error": err.Error()})
		return nil, false
	}

	var answers models.AnswerContext
	if err := json.Unmarshal([]byte(val), &answers); err != nil {
		metrics.CacheLookups.WithLabelValues("answers", "error").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("answers", "hit").Inc()
	return answers, true
}

func (s *Store) toCache(ctx context.Context, projectID string, answers models.AnswerContext) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, CacheKey(projectID), data, s.ttl).Err(); err != nil {
		s.log.Warn("answer cache write failed", map[string]interface{}{"projectId": projectID, "error": err.Error()})
	}
}

// normalize trims strings, including those inside lists.
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
