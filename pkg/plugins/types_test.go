package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestAccessors(t *testing.T) {
	req := &Request{
		Plugin: "linear",
		Path:   "issue/{identifier}",
		Params: map[string]string{"identifier": "ENG-42"},
		Query: map[string]any{
			"limit":            25,
			"includeCompleted": true,
			"state":            "open",
		},
	}

	assert.Equal(t, "ENG-42", req.Param("identifier"))
	assert.Empty(t, req.Param("missing"))

	limit, ok := req.Int("limit")
	assert.True(t, ok)
	assert.Equal(t, 25, limit)

	_, ok = req.Int("state")
	assert.False(t, ok, "wrong type is reported as absent")

	assert.True(t, req.Bool("includeCompleted"))
	assert.False(t, req.Bool("missing"))
	assert.Equal(t, "open", req.String("state"))
	assert.Empty(t, req.String("limit"))
}

func TestDescribePaths(t *testing.T) {
	paths := []PathDescriptor{
		{Name: "my-issues", Description: "List my issues", Schema: NewSchema(nil)},
		{Name: "issue/{identifier}", Description: "Get one issue"},
	}

	assert.Equal(t, []PathInfo{
		{Name: "my-issues", Description: "List my issues"},
		{Name: "issue/{identifier}", Description: "Get one issue"},
	}, DescribePaths(paths))

	assert.Empty(t, DescribePaths(nil))
}
