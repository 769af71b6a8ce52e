package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_JSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := Load(filepath.Join("testdata", "library.json"))
	require.NoError(t, err)
	fromYAML, err := Load(filepath.Join("testdata", "library.yaml"))
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, "2026.1", fromJSON.Version)
	require.Len(t, fromJSON.Templates, 3)
	assert.Equal(t, []string{"RURAL", "DISTRICT"}, fromJSON.Templates[0].Mapping.GeographyLevel)
	assert.Equal(t, []string{"NUTRITION"}, fromJSON.Templates[1].Mapping.SecondaryThemes)
	assert.Empty(t, fromJSON.Templates[2].Mapping.GeographyLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "absent.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template library")
}

func TestParseJSON_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "malformed",
			doc:     `{"version": "1", "templates": [`,
			wantErr: "failed to parse JSON",
		},
		{
			name:    "missing version",
			doc:     `{"templates": []}`,
			wantErr: "schema validation failed",
		},
		{
			name:    "template without theme",
			doc:     `{"version": "1", "templates": [{"id": "a", "mapping": {}}]}`,
			wantErr: "theme",
		},
		{
			name:    "unknown mapping key",
			doc:     `{"version": "1", "templates": [{"id": "a", "theme": "X", "mapping": {"regions": ["N"]}}]}`,
			wantErr: "schema validation failed",
		},
		{
			name:    "empty tag",
			doc:     `{"version": "1", "templates": [{"id": "a", "theme": "X", "mapping": {"targetGroups": [""]}}]}`,
			wantErr: "schema validation failed",
		},
		{
			name:    "duplicate ids",
			doc:     `{"version": "1", "templates": [{"id": "a", "theme": "X", "mapping": {}}, {"id": "a", "theme": "Y", "mapping": {}}]}`,
			wantErr: "duplicate template id: a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := ParseJSON([]byte(tt.doc))

			require.Error(t, err)
			assert.Nil(t, lib)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseYAML_WrongTypes(t *testing.T) {
	_, err := ParseYAML([]byte("version: 3\ntemplates: []\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestLoad_WrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: [\n"), 0o600))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yml")
}

func TestLibrary_Themes(t *testing.T) {
	lib, err := Load(filepath.Join("testdata", "library.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"EDUCATION_FLN", "HEALTH_MATERNAL", "NUTRITION"}, lib.Themes())
}
