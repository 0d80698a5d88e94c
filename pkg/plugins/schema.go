package plugins

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/platinummonkey/switchyard/pkg/httputil"
)

// ParamType is the type a query parameter is parsed into
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// Param describes one accepted query parameter
type Param struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Default     any       `json:"default,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Minimum     *int      `json:"minimum,omitempty"`
	Maximum     *int      `json:"maximum,omitempty"`
}

// String creates a string parameter
func String(desc string) Param {
	return Param{Type: TypeString, Description: desc}
}

// Int creates an integer parameter
func Int(desc string) Param {
	return Param{Type: TypeInteger, Description: desc}
}

// Bool creates a boolean parameter
func Bool(desc string) Param {
	return Param{Type: TypeBoolean, Description: desc}
}

// Enum creates a string parameter restricted to values
func Enum(desc string, values ...string) Param {
	return Param{Type: TypeString, Description: desc, Enum: values}
}

// AsRequired returns a copy of p that must be present
func (p Param) AsRequired() Param {
	p.Required = true
	return p
}

// WithDefault returns a copy of p that takes def when absent
func (p Param) WithDefault(def any) Param {
	p.Default = def
	return p
}

// WithRange returns a copy of p bounded to [minimum, maximum] inclusive
func (p Param) WithRange(minimum, maximum int) Param {
	p.Minimum = &minimum
	p.Maximum = &maximum
	return p
}

// Schema describes the query parameters a path accepts. Parameters not listed
// are rejected unless AllowUnknown is set.
type Schema struct {
	Params       map[string]Param `json:"params"`
	AllowUnknown bool             `json:"allowUnknown,omitempty"`
}

// NewSchema creates a schema from a parameter map
func NewSchema(params map[string]Param) *Schema {
	return &Schema{Params: params}
}

// ValidationError lists every problem found in a query string
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid query parameters: " + strings.Join(e.Problems, "; ")
}

// Validate checks values against the schema and returns the typed values,
// with defaults applied. A nil schema accepts everything as strings.
func (s *Schema) Validate(values url.Values) (map[string]any, error) {
	if s == nil {
		return rawQuery(values), nil
	}

	result := make(map[string]any, len(s.Params))
	var problems []string

	names := make([]string, 0, len(s.Params))
	for name := range s.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		param := s.Params[name]
		raw, present := values[name]
		if !present || len(raw) == 0 || strings.TrimSpace(raw[0]) == "" {
			if param.Required {
				problems = append(problems, fmt.Sprintf("missing required query parameter '%s'", name))
			} else if param.Default != nil {
				result[name] = param.Default
			}
			continue
		}
		if len(raw) > 1 {
			problems = append(problems, fmt.Sprintf("query parameter '%s' must not be repeated", name))
			continue
		}

		value, err := param.parse(values, name)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		result[name] = value
	}

	if !s.AllowUnknown {
		var unknown []string
		for name := range values {
			if _, ok := s.Params[name]; !ok {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		for _, name := range unknown {
			problems = append(problems, fmt.Sprintf("unknown query parameter '%s'", name))
		}
	} else {
		for name, raw := range values {
			if _, ok := s.Params[name]; !ok && len(raw) > 0 {
				result[name] = raw[0]
			}
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return result, nil
}

func (p Param) parse(values url.Values, name string) (any, error) {
	switch p.Type {
	case TypeInteger:
		v, err := httputil.ParseQueryInt(values, name, 0)
		if err != nil {
			return nil, err
		}
		if p.Minimum != nil && v < *p.Minimum {
			return nil, fmt.Errorf("query parameter '%s' must be >= %d", name, *p.Minimum)
		}
		if p.Maximum != nil && v > *p.Maximum {
			return nil, fmt.Errorf("query parameter '%s' must be <= %d", name, *p.Maximum)
		}
		return v, nil
	case TypeBoolean:
		return httputil.ParseQueryBool(values, name, false)
	default:
		v := values.Get(name)
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, v) {
			return nil, fmt.Errorf("query parameter '%s' must be one of [%s]", name, strings.Join(p.Enum, ", "))
		}
		return v, nil
	}
}

func rawQuery(values url.Values) map[string]any {
	result := make(map[string]any, len(values))
	for name, raw := range values {
		if len(raw) > 0 {
			result[name] = raw[0]
		}
	}
	return result
}
