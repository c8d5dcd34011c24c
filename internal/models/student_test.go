package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentCode(t *testing.T) {
	assert.Equal(t, "SW001", StudentCode(1))
	assert.Equal(t, "SW042", StudentCode(42))
	assert.Equal(t, "SW1000", StudentCode(1000))

	n, ok := ParseStudentCode("SW017")
	assert.True(t, ok)
	assert.Equal(t, 17, n)

	for _, code := range []string{"", "SW", "SW1", "XX001", "SWabc"} {
		_, ok := ParseStudentCode(code)
		assert.False(t, ok, code)
	}
}
