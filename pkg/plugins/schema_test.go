package plugins

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueSchema() *Schema {
	return NewSchema(map[string]Param{
		"limit":            Int("Maximum number of issues").WithRange(1, 100).WithDefault(50),
		"includeCompleted": Bool("Include completed issues").WithDefault(false),
		"state":            Enum("Issue state", "open", "closed", "all"),
		"team":             String("Team key").AsRequired(),
	})
}

func TestSchemaValidate_AppliesDefaults(t *testing.T) {
	got, err := issueSchema().Validate(url.Values{"team": {"ENG"}})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"limit":            50,
		"includeCompleted": false,
		"team":             "ENG",
	}, got)
}

func TestSchemaValidate_ParsesTypes(t *testing.T) {
	got, err := issueSchema().Validate(url.Values{
		"team":             {"ENG"},
		"limit":            {"10"},
		"includeCompleted": {"true"},
		"state":            {"closed"},
	})

	require.NoError(t, err)
	assert.Equal(t, 10, got["limit"])
	assert.Equal(t, true, got["includeCompleted"])
	assert.Equal(t, "closed", got["state"])
}

func TestSchemaValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		problem string
	}{
		{
			name:    "missing required",
			values:  url.Values{},
			problem: "missing required query parameter 'team'",
		},
		{
			name:    "blank required",
			values:  url.Values{"team": {"  "}},
			problem: "missing required query parameter 'team'",
		},
		{
			name:    "not an integer",
			values:  url.Values{"team": {"ENG"}, "limit": {"ten"}},
			problem: "invalid integer for query param limit: ten",
		},
		{
			name:    "below minimum",
			values:  url.Values{"team": {"ENG"}, "limit": {"0"}},
			problem: "query parameter 'limit' must be >= 1",
		},
		{
			name:    "above maximum",
			values:  url.Values{"team": {"ENG"}, "limit": {"101"}},
			problem: "query parameter 'limit' must be <= 100",
		},
		{
			name:    "not a boolean",
			values:  url.Values{"team": {"ENG"}, "includeCompleted": {"maybe"}},
			problem: "invalid boolean for query param includeCompleted: maybe",
		},
		{
			name:    "outside enum",
			values:  url.Values{"team": {"ENG"}, "state": {"merged"}},
			problem: "query parameter 'state' must be one of [open, closed, all]",
		},
		{
			name:    "repeated",
			values:  url.Values{"team": {"ENG", "OPS"}},
			problem: "query parameter 'team' must not be repeated",
		},
		{
			name:    "unknown",
			values:  url.Values{"team": {"ENG"}, "sort": {"desc"}},
			problem: "unknown query parameter 'sort'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := issueSchema().Validate(tt.values)

			require.Error(t, err)
			assert.Nil(t, got)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Problems, tt.problem)
			assert.Contains(t, err.Error(), "invalid query parameters")
		})
	}
}

func TestSchemaValidate_CollectsAllProblems(t *testing.T) {
	_, err := issueSchema().Validate(url.Values{"limit": {"500"}, "extra": {"1"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"query parameter 'limit' must be <= 100",
		"missing required query parameter 'team'",
		"unknown query parameter 'extra'",
	}, verr.Problems)
}

func TestSchemaValidate_AllowUnknown(t *testing.T) {
	schema := issueSchema()
	schema.AllowUnknown = true

	got, err := schema.Validate(url.Values{"team": {"ENG"}, "sort": {"desc"}})

	require.NoError(t, err)
	assert.Equal(t, "desc", got["sort"])
}

func TestSchemaValidate_NilSchemaPassesThrough(t *testing.T) {
	var schema *Schema

	got, err := schema.Validate(url.Values{"anything": {"goes", "twice"}})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"anything": "goes"}, got)
}

func TestParamBuildersDoNotMutate(t *testing.T) {
	base := Int("count")
	bounded := base.WithRange(1, 10).AsRequired()

	assert.Nil(t, base.Minimum)
	assert.False(t, base.Required)
	require.NotNil(t, bounded.Minimum)
	assert.Equal(t, 1, *bounded.Minimum)
	assert.True(t, bounded.Required)
}
