// File: internal/common/identity_test.go
package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"well-formed", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"scheme is case-insensitive", "bearer abc.def.ghi", "abc.def.ghi"},
		{"empty header", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"missing token", "Bearer", ""},
		{"trailing segment", "Bearer abc def", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBearerToken(tt.header))
		})
	}
}
