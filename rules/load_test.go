package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"petrovich.ru/petrovich/types"
)

const testTable = `
firstname:
  exceptions:
    - gender: male
      test: [лев]
      mods: [--ьва, --ьву, --ьва, --ьвом, --ьве]
  suffixes:
    - gender: androgynous
      test: [е, ё, и, о, у, ы, э, ю]
      mods: [., ., ., ., .]
lastname:
  exceptions:
    - gender: androgynous
      test:
        - бонч
        - абдул
      mods: [., ., ., ., .]
      tags: [first_word]
  suffixes:
    - gender: female
      test: [б, в, г, д, ж, з]
      mods: [., ., ., ., .]
middlename:
  exceptions:
    - gender: androgynous
      test:
        - борух
      mods: [., ., ., ., .]
      tags: [first_word]
  suffixes:
    - gender: male
      test: [мич, ьич, кич]
      mods: [а, у, а, ом, е]
`

func testRules(t *testing.T) *Rules {
	rules, err := LoadBytes([]byte(testTable))
	require.NoError(t, err)
	return rules
}

func TestGroupFind(t *testing.T) {
	rules := testRules(t)

	group := rules.FirstName()
	rule, ok := group.Find("лев", types.Male, false)
	require.True(t, ok)
	assert.Same(t, group.exceptions[0], rule)

	group = rules.MiddleName()
	rule, ok = group.Find("борух", types.Male, true)
	require.True(t, ok)
	assert.Same(t, group.exceptions[0], rule)

	// first-word-only exception does not apply to a later word
	_, ok = rules.LastName().Find("абдул", types.Male, false)
	assert.False(t, ok)
}

func TestGroupExceptionsFirst(t *testing.T) {
	exception := NewRule(types.Androgynous, []string{"лев"}, []string{"--ьва"}, false)
	suffix := NewRule(types.Male, []string{"в"}, []string{"а"}, false)
	group := NewRuleGroup([]*Rule{exception}, []*Rule{suffix})

	match, ok := group.Lookup("лев", types.Male, true)
	require.True(t, ok)
	assert.Same(t, exception, match.Rule)
	assert.Equal(t, Exceptions, match.List)

	match, ok = group.Lookup("петров", types.Male, true)
	require.True(t, ok)
	assert.Same(t, suffix, match.Rule)
	assert.Equal(t, Suffixes, match.List)
	assert.Equal(t, 0, match.Index)
}

func TestGroupLoadOrderWins(t *testing.T) {
	first := NewRule(types.Androgynous, []string{"а"}, []string{"-ы"}, false)
	second := NewRule(types.Androgynous, []string{"на"}, []string{"-е"}, false)
	group := NewRuleGroup(nil, []*Rule{first, second})

	rule, ok := group.Find("анна", types.Female, true)
	require.True(t, ok)
	assert.Same(t, first, rule)
}

func TestLoadTags(t *testing.T) {
	rules := testRules(t)

	assert.False(t, rules.FirstName().Exceptions()[0].FirstWordOnly())
	assert.True(t, rules.LastName().Exceptions()[0].FirstWordOnly())
	assert.False(t, rules.LastName().Suffixes()[0].FirstWordOnly())

	// any tags value counts, even an empty one
	rules, err := LoadBytes([]byte(`
lastname:
  exceptions:
    - gender: male
      test: [ван]
      mods: [., ., ., ., .]
      tags:
`))
	require.NoError(t, err)
	assert.True(t, rules.LastName().Exceptions()[0].FirstWordOnly())
}

func TestLoadSkipsBrokenRecords(t *testing.T) {
	rules, err := LoadBytes([]byte(`
firstname:
  exceptions:
    - gender: male
      test: [лев]
      mods: [--ьва, --ьву, --ьва, --ьвом, --ьве]
    - gender: neuter
      test: [оно]
      mods: [., ., ., ., .]
    - test: [без]
      mods: [., ., ., ., .]
    - just a string
  suffixes:
    - gender: female
      test: {a: b}
      mods: [., ., ., ., .]
    - gender: female
      mods: [., ., ., ., .]
    - gender: androgynous
      test: [а]
      mods: [-ы, -е, -у, -ой, -е]
`))
	require.NoError(t, err)

	assert.Len(t, rules.FirstName().Exceptions(), 1)
	assert.Len(t, rules.FirstName().Suffixes(), 1)
	assert.Equal(t, 0, rules.LastName().Len())

	skipped := rules.Skipped()
	require.Len(t, skipped, 5)
	assert.Equal(t, FirstName, skipped[0].Role)
	assert.Equal(t, Exceptions, skipped[0].List)
	assert.Equal(t, 1, skipped[0].Index)
	assert.Contains(t, skipped[0].Reason, "neuter")
	assert.Contains(t, skipped[1].Reason, "gender is missing")
	assert.Equal(t, 3, skipped[2].Index)
	assert.Equal(t, Suffixes, skipped[3].List)
	assert.Contains(t, skipped[4].Reason, "test is missing")
	assert.Greater(t, skipped[0].Line, 0)
	assert.Contains(t, skipped[0].String(), "firstname.exceptions[1]")
}

func TestLoadMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":         "",
		"comment only":  "# nothing here\n",
		"syntax":        "firstname: [unclosed",
		"not a mapping": "- a\n- b\n",
		"scalar":        "rules",
		"bad group":     "firstname: [1, 2]\n",
		"bad list":      "lastname:\n  suffixes: 5\n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := LoadBytes([]byte(input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedStructure))
			assert.False(t, errors.Is(err, ErrSourceUnreadable))

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, MalformedStructure, loadErr.Kind)
		})
	}
}

func TestLoadMissingRolesAreEmpty(t *testing.T) {
	rules, err := Load(strings.NewReader("firstname:\n  suffixes: []\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, rules.Len())
	assert.Empty(t, rules.Skipped())
}

func TestLoadFileUnreadable(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.yml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnreadable))
	assert.Contains(t, err.Error(), "does-not-exist.yml")
}

type failingSource struct{}

func (failingSource) Fetch(context.Context) ([]byte, error) {
	return nil, errors.New("connection reset")
}

func (failingSource) Name() string {
	return "failing"
}

func TestLoadSourceUnreadable(t *testing.T) {
	_, err := LoadSource(context.Background(), failingSource{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnreadable))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFingerprint(t *testing.T) {
	a := testRules(t)
	b := testRules(t)
	assert.NotZero(t, a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c, err := LoadBytes([]byte(testTable + "\n# changed\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestRulesGroup(t *testing.T) {
	rules := testRules(t)
	assert.Same(t, rules.FirstName(), rules.Group(FirstName))
	assert.Same(t, rules.LastName(), rules.Group(LastName))
	assert.Same(t, rules.MiddleName(), rules.Group(MiddleName))
	assert.Equal(t, 6, rules.Len())
}
