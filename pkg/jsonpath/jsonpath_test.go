package jsonpath

import (
	"testing"
)

const doc = `{
	"listen": { "port": 7000, "host": "" },
	"log": { "level": "debug" },
	"output": { "report": null },
	"ratio": 1.5,
	"names": ["a", "b"]
}`

func TestString(t *testing.T) {
	tests := []struct {
		name string
		path string
		def  string
		want string
	}{
		{"Nested field", "$.log.level", "warn", "debug"},
		{"Without dollar", "log.level", "warn", "debug"},
		{"Missing field", "$.output.color", "auto", "auto"},
		{"Null field", "$.output.report", "none", "none"},
		{"Empty string is present", "$.listen.host", "x", ""},
		{"Bracket notation", "$['log']['level']", "warn", "debug"},
		{"Array index", "$.names[1]", "", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String([]byte(doc), tt.path, tt.def); got != tt.want {
				t.Errorf("String(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestInt(t *testing.T) {
	got, err := Int([]byte(doc), "$.listen.port", 6543)
	if err != nil || got != 7000 {
		t.Errorf("Int(listen.port) = %d, %v; want 7000, nil", got, err)
	}

	got, err = Int([]byte(doc), "$.listen.backlog", 0)
	if err != nil || got != 0 {
		t.Errorf("Int(missing) = %d, %v; want default 0", got, err)
	}

	if _, err := Int([]byte(doc), "$.ratio", 0); err == nil {
		t.Error("Int(ratio) should reject a fractional number")
	}
	if _, err := Int([]byte(doc), "$.log.level", 0); err == nil {
		t.Error("Int(log.level) should reject a string")
	}
}

func TestLookup_Root(t *testing.T) {
	result, ok := Lookup([]byte(doc), "$")
	if !ok || !result.IsObject() {
		t.Errorf("Lookup($) = %v, %v; want the root object", result.Raw, ok)
	}
}

func TestConvertToGjsonPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"$", "@this"},
		{"$.listen.port", "listen.port"},
		{"$['listen']['port']", "listen.port"},
		{`$["listen"].port`, "listen.port"},
		{"$.names[0]", "names.0"},
		{"log.level", "log.level"},
	}
	for _, tt := range tests {
		if got := convertToGjsonPath(tt.path); got != tt.want {
			t.Errorf("convertToGjsonPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
