package httputil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected int
		wantErr  bool
	}{
		{"missing uses default", "", 25, false},
		{"valid", "limit=10", 10, false},
		{"negative", "limit=-3", -3, false},
		{"whitespace", "limit=%2010%20", 10, false},
		{"invalid", "limit=ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseQueryInt(values, "limit", 25)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "limit")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseQueryBool(t *testing.T) {
	values := url.Values{"a": {"true"}, "b": {"0"}, "c": {"maybe"}}

	got, err := ParseQueryBool(values, "a", false)
	assert.NoError(t, err)
	assert.True(t, got)

	got, err = ParseQueryBool(values, "b", true)
	assert.NoError(t, err)
	assert.False(t, got)

	got, err = ParseQueryBool(values, "missing", true)
	assert.NoError(t, err)
	assert.True(t, got)

	_, err = ParseQueryBool(values, "c", false)
	assert.Error(t, err)
}

func TestPathVars(t *testing.T) {
	router := mux.NewRouter()
	var vars map[string]string
	var id string
	var idErr, missingErr error
	router.HandleFunc("/issue/{identifier}", func(w http.ResponseWriter, r *http.Request) {
		vars = GetPathVars(r)
		id, idErr = ParsePathString(r, "identifier")
		_, missingErr = ParsePathString(r, "other")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/issue/PROJ-1", nil))

	assert.Equal(t, map[string]string{"identifier": "PROJ-1"}, vars)
	assert.NoError(t, idErr)
	assert.Equal(t, "PROJ-1", id)
	assert.Error(t, missingErr)
}

func TestGetPathVars_NoRoute(t *testing.T) {
	vars := GetPathVars(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, vars)
	assert.Empty(t, vars)
}
