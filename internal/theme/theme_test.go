package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectColorIsStable(t *testing.T) {
	assert.Equal(t, ProjectColor("1"), ProjectColor("1"))

	seen := map[string]bool{}
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"} {
		seen[ProjectColor(id).Dark] = true
	}
	assert.Greater(t, len(seen), 1)
}
