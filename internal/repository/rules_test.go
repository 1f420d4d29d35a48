package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRulesRepository_CollectionNames(t *testing.T) {
	valid := []string{"presentation_rules", "rules", "r2d2_rules"}
	for _, name := range valid {
		_, err := NewRulesRepository(nil, name)
		require.NoError(t, err, "name %q", name)
	}

	invalid := []string{"", "Rules", "2rules", "rules; DROP TABLE users", "rules-archive"}
	for _, name := range invalid {
		_, err := NewRulesRepository(nil, name)
		assert.Error(t, err, "name %q", name)
	}
}
