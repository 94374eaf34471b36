package skills

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate_Coercion(t *testing.T) {
	params := []Param{
		{Name: "count", Kind: KindNumber},
		{Name: "all", Kind: KindBoolean},
		{Name: "files", Kind: KindStrings},
		{Name: "data", Kind: KindObject},
	}
	raw := map[string]any{
		"count":   "5",
		"all":     "TRUE",
		"files":   `["a.go","b.go"]`,
		"data":    `{"brightness": 80}`,
		"unknown": "dropped",
	}

	got, err := Validate(params, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Params{
		"count": 5.0,
		"all":   true,
		"files": []string{"a.go", "b.go"},
		"data":  map[string]any{"brightness": 80.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_NativeTypes(t *testing.T) {
	params := []Param{
		{Name: "n", Kind: KindNumber},
		{Name: "b", Kind: KindBoolean},
		{Name: "s", Kind: KindStrings},
	}
	got, err := Validate(params, map[string]any{
		"n": 3.5,
		"b": false,
		"s": []any{"x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number("n", 0) != 3.5 || got.Bool("b") || got.Strings("s")[0] != "x" {
		t.Errorf("unexpected params %#v", got)
	}
}

func TestValidate_AllIssuesReported(t *testing.T) {
	params := []Param{
		{Name: "path", Kind: KindString},
		{Name: "count", Kind: KindNumber},
		{Name: "flag", Kind: KindBoolean, Optional: true},
	}
	_, err := Validate(params, map[string]any{
		"count": "many",
		"flag":  "maybe",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		"path: required",
		`count: expected number, got "many"`,
		`flag: expected boolean, got "maybe"`,
	}
	if diff := cmp.Diff(want, verr.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_OptionalAbsentOrNull(t *testing.T) {
	params := []Param{{Name: "ref", Kind: KindString, Optional: true}}
	got, err := Validate(params, map[string]any{"ref": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Has("ref") {
		t.Error("expected null optional parameter to be omitted")
	}
}

func TestValidate_ArrayItemType(t *testing.T) {
	params := []Param{{Name: "s", Kind: KindStrings}}
	_, err := Validate(params, map[string]any{"s": []any{"ok", 1.0}})
	if err == nil {
		t.Fatal("expected error for non-string item")
	}
}
