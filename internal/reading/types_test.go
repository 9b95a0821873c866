package reading

import (
	"encoding/json"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw     string
		numeric bool
		want    float64
	}{
		{"21.5", true, 21.5},
		{"-4", true, -4},
		{" 7 ", true, 7},
		{"1e3", true, 1000},
		{"open", false, 0},
		{"", false, 0},
		{"NaN", false, 0},
		{"Inf", false, 0},
		{"12,5", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := ParseValue(tt.raw)
			if v.IsNumeric() != tt.numeric {
				t.Fatalf("IsNumeric() = %v, want %v", v.IsNumeric(), tt.numeric)
			}
			f, ok := v.Float()
			if ok != tt.numeric || f != tt.want {
				t.Errorf("Float() = (%v, %v), want (%v, %v)", f, ok, tt.want, tt.numeric)
			}
			if v.String() != tt.raw {
				t.Errorf("String() = %q, want %q", v.String(), tt.raw)
			}
		})
	}
}

func TestValue_ZeroIsText(t *testing.T) {
	var v Value
	if v.Kind() != KindText {
		t.Errorf("Kind() = %q, want %q", v.Kind(), KindText)
	}
}

func TestRecord_JSONValueIsString(t *testing.T) {
	r := rec("r1", "dev-1", "sen-1", "19.25", baseTime)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if raw["value"] != "19.25" {
		t.Errorf("value = %#v, want \"19.25\"", raw["value"])
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal(Record) error = %v", err)
	}
	if f, ok := back.Value.Float(); !ok || f != 19.25 {
		t.Errorf("decoded Value = %v, %v", f, ok)
	}
}
