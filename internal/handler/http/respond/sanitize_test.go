package respond

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"nil error",
			nil,
			"",
		},
		{
			"anthropic key",
			fmt.Errorf("claude call failed: key sk-ant-api03-deadbeefCAFE rejected"),
			"claude call failed: key sk-ant-**** rejected",
		},
		{
			"openai key",
			fmt.Errorf("openai call failed: key sk-proj1234567890abc rejected"),
			"openai call failed: key sk-**** rejected",
		},
		{
			"postgres dsn password",
			fmt.Errorf("connect postgres://searchgate:hunter2@db:5432/cache: timeout"),
			"connect postgres://searchgate:****@db:5432/cache: timeout",
		},
		{
			"plain message untouched",
			errors.New("upstream search: status 502"),
			"upstream search: status 502",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeError(tt.err))
		})
	}
}

func TestSanitizeError_DoesNotRemaskMaskedKeys(t *testing.T) {
	first := SanitizeError(errors.New("auth with sk-ant-api03-deadbeefCAFE failed"))
	second := SanitizeError(errors.New(first))
	assert.Equal(t, first, second)
}
