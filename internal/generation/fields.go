package generation

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

func stringField(obj gjson.Result, path string) (string, error) {
	v := obj.Get(path)
	if !v.Exists() {
		return "", fmt.Errorf("%s is missing", path)
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("%s must be a string", path)
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return "", fmt.Errorf("%s must not be empty", path)
	}
	return s, nil
}

func numberField(obj gjson.Result, path string) (float64, error) {
	v := obj.Get(path)
	if !v.Exists() {
		return 0, fmt.Errorf("%s is missing", path)
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%s must be a number", path)
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be finite", path)
	}
	return f, nil
}

func intField(obj gjson.Result, path string) (int, error) {
	f, err := numberField(obj, path)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be a whole number", path)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%s out of range", path)
	}
	return int(f), nil
}

// enumTag normalizes loosely formatted enum values such as "health conscious"
func enumTag(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}
