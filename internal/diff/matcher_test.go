package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func identity(s string) string { return s }

func TestMatch(t *testing.T) {
	tests := []struct {
		name       string
		from       []string
		to         []string
		onlyInFrom []string
		onlyInTo   []string
		pairs      []string
	}{
		{
			name: "both empty",
		},
		{
			name:     "everything added",
			to:       []string{"b", "a"},
			onlyInTo: []string{"b", "a"},
		},
		{
			name:       "everything removed",
			from:       []string{"b", "a"},
			onlyInFrom: []string{"b", "a"},
		},
		{
			name:       "mixed keeps side order",
			from:       []string{"d", "keep1", "c", "keep2"},
			to:         []string{"keep2", "y", "keep1", "x"},
			onlyInFrom: []string{"d", "c"},
			onlyInTo:   []string{"y", "x"},
			pairs:      []string{"keep2", "keep1"},
		},
		{
			name:       "keys are case sensitive",
			from:       []string{"Users"},
			to:         []string{"users"},
			onlyInFrom: []string{"Users"},
			onlyInTo:   []string{"users"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := match(tt.from, tt.to, identity)

			assert.Equal(t, tt.onlyInFrom, m.onlyInFrom)
			assert.Equal(t, tt.onlyInTo, m.onlyInTo)

			var pairs []string
			for _, p := range m.pairs {
				assert.Equal(t, p.from, p.to)
				pairs = append(pairs, p.to)
			}
			assert.Equal(t, tt.pairs, pairs)
		})
	}
}
