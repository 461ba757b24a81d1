package types

type Case int8

const (
	// именительный
	Nominative Case = iota
	// родительный
	Genitive
	// дательный
	Dative
	// винительный
	Accusative
	// творительный
	Instrumental
	// предложный
	Prepositional
)

const modifiersPerRule = 5

var caseTokens = [...]string{
	Nominative:    "nominative",
	Genitive:      "genitive",
	Dative:        "dative",
	Accusative:    "accusative",
	Instrumental:  "instrumental",
	Prepositional: "prepositional",
}

func AllCases() []Case {
	return []Case{Nominative, Genitive, Dative, Accusative, Instrumental, Prepositional}
}

func (c Case) Value() string {
	if c < Nominative || c > Prepositional {
		return ""
	}
	return caseTokens[c]
}

func (c Case) String() string {
	return c.Value()
}

func CaseOf(token string) (Case, bool) {
	for c, t := range caseTokens {
		if t == token {
			return Case(c), true
		}
	}
	return Nominative, false
}

// ModifierIndex returns the position of the case inside a rule's modifier
// list. Nominative is the base form and has no modifier.
func (c Case) ModifierIndex() (int, bool) {
	if c <= Nominative || c > Prepositional {
		return 0, false
	}
	idx := int(c) - 1
	return idx, idx < modifiersPerRule
}
