package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be numeric").WithDetails(map[string]string{key: "must be numeric"})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" is out of range").
			WithDetails(map[string]string{key: "must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)})
	}
	return value, nil
}

// HasQuery reports whether any of keys is present and non-empty.
func HasQuery(r *http.Request, keys ...string) bool {
	values := r.URL.Query()
	for _, key := range keys {
		if strings.TrimSpace(values.Get(key)) != "" {
			return true
		}
	}
	return false
}
