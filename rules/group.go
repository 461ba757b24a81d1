package rules

import "petrovich.ru/petrovich/types"

// RuleGroup keeps the rules of one name role. Exceptions list irregular
// words and are always probed before the general suffix patterns. Order
// inside each list is the load order and decides ties.
type RuleGroup struct {
	exceptions []*Rule
	suffixes   []*Rule
}

type Match struct {
	Rule  *Rule
	List  ListKind
	Index int
}

func NewRuleGroup(exceptions []*Rule, suffixes []*Rule) RuleGroup {
	return RuleGroup{
		exceptions: append([]*Rule(nil), exceptions...),
		suffixes:   append([]*Rule(nil), suffixes...),
	}
}

func (group *RuleGroup) Exceptions() []*Rule {
	return append([]*Rule(nil), group.exceptions...)
}

func (group *RuleGroup) Suffixes() []*Rule {
	return append([]*Rule(nil), group.suffixes...)
}

func (group *RuleGroup) Len() int {
	return len(group.exceptions) + len(group.suffixes)
}

func (group *RuleGroup) Find(word string, gender types.Gender, isFirstWord bool) (*Rule, bool) {
	match, ok := group.Lookup(word, gender, isFirstWord)
	if !ok {
		return nil, false
	}
	return match.Rule, true
}

// Lookup is Find that also tells which list and position the rule came from.
func (group *RuleGroup) Lookup(word string, gender types.Gender, isFirstWord bool) (Match, bool) {
	if idx, ok := findRule(group.exceptions, word, gender, isFirstWord); ok {
		return Match{Rule: group.exceptions[idx], List: Exceptions, Index: idx}, true
	}
	if idx, ok := findRule(group.suffixes, word, gender, isFirstWord); ok {
		return Match{Rule: group.suffixes[idx], List: Suffixes, Index: idx}, true
	}
	return Match{}, false
}

func findRule(rules []*Rule, word string, gender types.Gender, isFirstWord bool) (int, bool) {
	for i, rule := range rules {
		if rule.Matches(word, gender, isFirstWord) {
			return i, true
		}
	}
	return -1, false
}
