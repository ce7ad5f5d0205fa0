package models

import (
	"reflect"
	"testing"
)

func TestStringArrayScanLegacyValues(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  StringArray
	}{
		{"nil", nil, StringArray{}},
		{"empty", "", StringArray{}},
		{"null literal", "null", StringArray{}},
		{"json array", `["a","b"]`, StringArray{"a", "b"}},
		{"json string", `"solo"`, StringArray{"solo"}},
		{"bare legacy string", "keyword one", StringArray{"keyword one"}},
		{"bytes", []byte(`["x"]`), StringArray{"x"}},
	}
	for _, tc := range cases {
		var a StringArray
		if err := a.Scan(tc.value); err != nil {
			t.Errorf("%s: Scan error: %v", tc.name, err)
			continue
		}
		if !reflect.DeepEqual(a, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, a, tc.want)
		}
	}
}

func TestStringArrayValueNil(t *testing.T) {
	var a StringArray
	v, err := a.Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if v != "[]" {
		t.Errorf("nil Value = %v, want []", v)
	}
}
