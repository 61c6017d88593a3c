package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ops@acme.io", true},
		{"jane.doe+plant@factory.example.com", true},
		{"", false},
		{"no-at-sign", false},
		{"Jane <jane@acme.io>", false},
		{"jane@localhost", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValid(tt.in), tt.in)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", DisplayName("jane.doe@acme.io"))
	assert.Equal(t, "Ops", DisplayName("ops@acme.io"))
	assert.Equal(t, "User User", DisplayName("_@acme.io"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "j*******@acme.io", Mask("jane.doe@acme.io"))
	assert.Equal(t, "nonsense", Mask("nonsense"))
	assert.Equal(t, "+* (***) ***-4567", MaskPhone("+1 (555) 123-4567"))
}
