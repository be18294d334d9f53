// Package jsonpath reads values out of JSON documents with JSONPath-style
// expressions such as $.listen.port.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Lookup returns the value at path, and whether it exists and is not null.
func Lookup(doc []byte, path string) (gjson.Result, bool) {
	result := gjson.GetBytes(doc, convertToGjsonPath(path))
	if !result.Exists() || result.Type == gjson.Null {
		return result, false
	}
	return result, true
}

// String returns the string at path, or def when it is absent.
func String(doc []byte, path, def string) string {
	if result, ok := Lookup(doc, path); ok {
		return result.String()
	}
	return def
}

// Int returns the integer at path, or def when it is absent. A value that is
// not a whole number is an error.
func Int(doc []byte, path string, def int) (int, error) {
	result, ok := Lookup(doc, path)
	if !ok {
		return def, nil
	}
	if result.Type != gjson.Number || result.Num != float64(int(result.Num)) {
		return def, fmt.Errorf("%s: expected an integer, got %s", path, result.Raw)
	}
	return int(result.Int()), nil
}

// convertToGjsonPath converts a JSONPath expression to a gjson path
func convertToGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// Bracket notation: ['name'] and ["name"] become .name, [0] becomes .0
	replacer := strings.NewReplacer("['", ".", "']", "", `["`, ".", `"]`, "", "[", ".", "]", "")
	return strings.TrimPrefix(replacer.Replace(path), ".")
}
