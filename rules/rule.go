package rules

import (
	"strings"

	"petrovich.ru/petrovich/types"
)

type Rule struct {
	gender        types.Gender
	test          []string
	mods          []string
	firstWordOnly bool
}

func NewRule(gender types.Gender, test []string, mods []string, firstWordOnly bool) *Rule {
	return &Rule{
		gender:        gender,
		test:          append([]string(nil), test...),
		mods:          append([]string(nil), mods...),
		firstWordOnly: firstWordOnly,
	}
}

func (rule *Rule) Gender() types.Gender {
	return rule.gender
}

func (rule *Rule) Test() []string {
	return append([]string(nil), rule.test...)
}

func (rule *Rule) Mods() []string {
	return append([]string(nil), rule.mods...)
}

// FirstWordOnly restricts the rule to the first part of a hyphenated name.
// Rules without the flag apply to any part.
func (rule *Rule) FirstWordOnly() bool {
	return rule.firstWordOnly
}

// Matches expects word to be trimmed and lowercased already.
func (rule *Rule) Matches(word string, gender types.Gender, isFirstWord bool) bool {
	if !gender.Compatible(rule.gender) {
		return false
	}
	if rule.firstWordOnly && !isFirstWord {
		return false
	}
	for _, suffix := range rule.test {
		if strings.HasSuffix(word, suffix) {
			return true
		}
	}
	return false
}

func (rule *Rule) Modifier(c types.Case) (string, bool) {
	idx, ok := c.ModifierIndex()
	if !ok || idx >= len(rule.mods) {
		return "", false
	}
	return rule.mods[idx], true
}

func (rule *Rule) Apply(word string, c types.Case) string {
	modifier, ok := rule.Modifier(c)
	if !ok {
		return word
	}
	return ApplyModifier(word, modifier)
}
