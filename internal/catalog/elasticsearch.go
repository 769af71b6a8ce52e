// internal/catalog/elasticsearch.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quest-workers/internal/common/config"
	"quest-workers/internal/common/database"
	"quest-workers/internal/common/logger"
	"quest-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrIndexNotFound     = errors.New("template index not found")
	ErrSearchQueryFailed = errors.New("template search failed")
)

const DefaultIndex = "quest-templates"

// ElasticsearchSource searches a template index, boosting exact theme
// hits over secondary-theme hits. Ranking is still left to the matcher.
type ElasticsearchSource struct {
	es         *database.ElasticsearchClient
	index      string
	maxResults int
	log        logger.Logger
}

func NewElasticsearchSource(es *database.ElasticsearchClient, index string, maxResults int, log logger.Logger) *ElasticsearchSource {
	if index == "" {
		index = DefaultIndex
	}
	if maxResults <= 0 {
		maxResults = 100
	}
	return &ElasticsearchSource{
		es:         es,
		index:      index,
		maxResults: maxResults,
		log:        log.WithFields(map[string]interface{}{"component": "catalog", "source": config.CatalogSourceElasticsearch}),
	}
}

func (s *ElasticsearchSource) Name() string { return config.CatalogSourceElasticsearch }

func (s *ElasticsearchSource) Index() string { return s.index }

func (s *ElasticsearchSource) Templates(ctx context.Context, theme string) ([]models.Template, error) {
	start := time.Now()

	body, err := json.Marshal(buildThemeQuery(theme))
	if err != nil {
		return nil, fmt.Errorf("encode template query: %w", err)
	}

	size := s.maxResults
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, s.index)
		}
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchQueryFailed, err)
	}

	templates := make([]models.Template, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		tpl := hit.Source
		if tpl.ID == "" {
			tpl.ID = hit.ID
		}
		templates = append(templates, tpl)
	}

	timed(s.log, s.Name(), start, len(templates))
	return templates, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source models.Template `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// buildThemeQuery boosts templates whose primary or secondary theme is the
// hint. The match_all clause keeps every other template in the result so a
// geography or target group fit still reaches the matcher.
func buildThemeQuery(theme string) map[string]interface{} {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{
							"theme": map[string]interface{}{"value": theme, "boost": 2.0},
						},
					},
					map[string]interface{}{
						"term": map[string]interface{}{
							"mapping.secondaryThemes": map[string]interface{}{"value": theme},
						},
					},
					map[string]interface{}{
						"match_all": map[string]interface{}{"boost": 0.1},
					},
				},
			},
		},
	}
}
