package httputil

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// GetPathVars returns all path variables from the request
func GetPathVars(r *http.Request) map[string]string {
	vars := mux.Vars(r)
	if vars == nil {
		return map[string]string{}
	}
	return vars
}

// ParsePathString extracts a string path parameter
func ParsePathString(r *http.Request, key string) (string, error) {
	str := mux.Vars(r)[key]
	if str == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	return str, nil
}

// ParseQueryInt parses an integer query parameter
func ParseQueryInt(values url.Values, key string, defaultVal int) (int, error) {
	str := strings.TrimSpace(values.Get(key))
	if str == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for query param %s: %s", key, str)
	}
	return val, nil
}

// ParseQueryBool parses a boolean query parameter
func ParseQueryBool(values url.Values, key string, defaultVal bool) (bool, error) {
	str := strings.TrimSpace(values.Get(key))
	if str == "" {
		return defaultVal, nil
	}
	val, err := strconv.ParseBool(str)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for query param %s: %s", key, str)
	}
	return val, nil
}
