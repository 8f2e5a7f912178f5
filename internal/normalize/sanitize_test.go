package normalize

import (
	"reflect"
	"testing"
)

func TestSanitize_DropsUnsetFields(t *testing.T) {
	doc := map[string]any{
		"a": 1,
		"b": Unset,
		"c": map[string]any{
			"d": Unset,
			"e": 2,
		},
	}

	got := Sanitize(doc)
	want := map[string]any{
		"a": 1,
		"c": map[string]any{"e": 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize = %#v, want %#v", got, want)
	}
}

func TestSanitize_PreservesExplicitNull(t *testing.T) {
	doc := map[string]any{
		"set":   nil,
		"unset": Unset,
	}

	got, ok := Sanitize(doc).(map[string]any)
	if !ok {
		t.Fatal("Sanitize changed the document type")
	}
	if _, present := got["set"]; !present {
		t.Error("explicit null must survive sanitization")
	}
	if _, present := got["unset"]; present {
		t.Error("unset field must be removed")
	}
}

func TestSanitize_SlicesAndScalars(t *testing.T) {
	doc := []any{1, Unset, map[string]any{"x": Unset}, "keep"}

	got, ok := Sanitize(doc).([]any)
	if !ok {
		t.Fatal("Sanitize changed the slice type")
	}
	want := []any{1, map[string]any{}, "keep"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize = %#v, want %#v", got, want)
	}

	if Sanitize(42) != 42 {
		t.Error("scalars must pass through unchanged")
	}
	if Sanitize(nil) != nil {
		t.Error("top-level nil must pass through unchanged")
	}
}
