package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModifierIndex(t *testing.T) {
	_, ok := Nominative.ModifierIndex()
	assert.False(t, ok)

	expected := map[Case]int{
		Genitive:      0,
		Dative:        1,
		Accusative:    2,
		Instrumental:  3,
		Prepositional: 4,
	}
	for c, idx := range expected {
		actual, ok := c.ModifierIndex()
		assert.True(t, ok, c.Value())
		assert.Equal(t, idx, actual, c.Value())
	}

	_, ok = Case(42).ModifierIndex()
	assert.False(t, ok)
}

func TestCaseOf(t *testing.T) {
	for _, c := range AllCases() {
		parsed, ok := CaseOf(c.Value())
		assert.True(t, ok)
		assert.Equal(t, c, parsed)
	}
	_, ok := CaseOf("vocative")
	assert.False(t, ok)
	assert.Equal(t, "", Case(-1).Value())
}
