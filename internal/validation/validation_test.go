package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret1"))
	assert.NoError(t, ValidatePassword(strings.Repeat("a", 72)))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword(strings.Repeat("a", 73)))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("abc"))
	assert.NoError(t, ValidateUsername("jane_doe-99"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername(strings.Repeat("x", 31)))
	assert.Error(t, ValidateUsername("bad name"))
	assert.Error(t, ValidateUsername("emoji🙂"))
}
