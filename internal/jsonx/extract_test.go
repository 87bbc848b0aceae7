package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"prose before and after", `Here is the result: {"a": 1} as requested.`, `{"a": 1}`},
		{"code fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"nested objects", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"brace inside string", `{"a": "literal } brace"}`, `{"a": "literal } brace"}`},
		{"escaped quote in string", `{"a": "say \"}\" loudly"}`, `{"a": "say \"}\" loudly"}`},
		{"first of two objects", `{"a": 1} {"b": 2}`, `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractObject(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractObject_Errors(t *testing.T) {
	_, err := ExtractObject("no json here")
	assert.Error(t, err)

	_, err = ExtractObject(`{"a": 1`)
	assert.Error(t, err)
}
