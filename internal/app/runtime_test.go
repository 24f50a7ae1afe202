package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInTestModeFollowsEnvironment(t *testing.T) {
	t.Setenv("PALISADE_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv("PALISADE_TEST_MODE", "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
