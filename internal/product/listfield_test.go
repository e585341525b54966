package product

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseList(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"native array", `["red", " blue ", ""]`, []string{"red", "blue"}},
		{"json array in string", `"[\"S\",\"M\",\"L\"]"`, []string{"S", "M", "L"}},
		{"comma separated", `"cotton, summer ,,sale"`, []string{"cotton", "summer", "sale"}},
		{"single value", `"solo"`, []string{"solo"}},
		{"empty string", `""`, []string{}},
		{"null", `null`, []string{}},
		{"absent", ``, []string{}},
		{"bracket but not json", `"[oops"`, []string{"[oops"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseList(json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseList(%s) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseListRejectsNonStringShapes(t *testing.T) {
	for _, raw := range []string{`42`, `{"a":1}`, `[1,2]`} {
		if _, err := ParseList(json.RawMessage(raw)); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}
