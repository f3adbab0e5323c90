package llm

import (
	"encoding/json"
	"testing"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}```", want: `{"a":1}`},
		{name: "prose around", in: "Sure! {\"a\":1} Hope this helps.", want: `{"a":1}`},
		{name: "trailing commas", in: `{"a":[1,2,],"b":{"c":3,},}`, want: `{"a":[1,2],"b":{"c":3}}`},
		{name: "comma inside string kept", in: `{"a":"x,}"}`, want: `{"a":"x,}"}`},
		{name: "raw newline in string", in: "{\"a\":\"- one\n- two\"}", want: `{"a":"- one\n- two"}`},
		{name: "escaped quote", in: `{"a":"say \"hi\",","b":1,}`, want: `{"a":"say \"hi\",","b":1}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := repairJSON(tt.in)
			if got != tt.want {
				t.Fatalf("repairJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !json.Valid([]byte(got)) {
				t.Fatalf("repaired output is not valid JSON: %q", got)
			}
		})
	}
}
