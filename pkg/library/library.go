// Package library reads template library files: the JSON or YAML documents
// that seed the template catalog.
package library

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"quest-workers/internal/models"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

//nolint:gochecknoglobals // compiled once
var librarySchema = gojsonschema.NewStringLoader(schemaJSON)

// Library is a versioned set of templates.
type Library struct {
	Version     string            `json:"version" yaml:"version"`
	LastUpdated string            `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	Templates   []models.Template `json:"templates" yaml:"templates"`
}

// Load reads a library from path. Files ending in .yaml or .yml are parsed
// as YAML, anything else as JSON.
func Load(path string) (lib *Library, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read template library: %s", path)
		return lib, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		lib, err = ParseYAML(data)
	default:
		lib, err = ParseJSON(data)
	}
	if err != nil {
		err = errors.Wrapf(err, "invalid template library: %s", path)
	}
	return lib, err
}

// ParseYAML converts the document to JSON and parses it with ParseJSON.
func ParseYAML(data []byte) (lib *Library, err error) {
	var doc interface{}
	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		err = errors.Wrap(err, "failed to parse YAML")
		return lib, err
	}

	var asJSON []byte
	asJSON, err = json.Marshal(doc)
	if err != nil {
		err = errors.Wrap(err, "YAML document cannot be represented as JSON")
		return lib, err
	}

	lib, err = ParseJSON(asJSON)
	return lib, err
}

// ParseJSON validates data against the library schema, decodes it and
// rejects duplicate template ids.
func ParseJSON(data []byte) (lib *Library, err error) {
	var result *gojsonschema.Result
	result, err = gojsonschema.Validate(librarySchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		err = errors.Wrap(err, "failed to parse JSON")
		return lib, err
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			msgs = append(msgs, re.String())
		}
		err = errors.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
		return lib, err
	}

	lib = &Library{}
	err = json.Unmarshal(data, lib)
	if err != nil {
		err = errors.Wrap(err, "failed to decode library")
		return nil, err
	}

	err = lib.Validate()
	if err != nil {
		return nil, err
	}
	return lib, err
}

// Validate checks the invariants the schema cannot express.
func (l *Library) Validate() (err error) {
	seen := make(map[string]struct{}, len(l.Templates))
	for _, tpl := range l.Templates {
		if _, dup := seen[tpl.ID]; dup {
			err = errors.Errorf("duplicate template id: %s", tpl.ID)
			return err
		}
		seen[tpl.ID] = struct{}{}
	}
	return err
}

// Themes lists the distinct primary themes in library order.
func (l *Library) Themes() (themes []string) {
	seen := make(map[string]struct{})
	for _, tpl := range l.Templates {
		if _, ok := seen[tpl.Theme]; ok {
			continue
		}
		seen[tpl.Theme] = struct{}{}
		themes = append(themes, tpl.Theme)
	}
	return themes
}
