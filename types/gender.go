package types

import "strings"

type Gender int8

const (
	Androgynous Gender = iota
	Male
	Female
)

const (
	genderMale        = "male"
	genderFemale      = "female"
	genderAndrogynous = "androgynous"
)

func (g Gender) Value() string {
	switch g {
	case Male:
		return genderMale
	case Female:
		return genderFemale
	default:
		return genderAndrogynous
	}
}

func (g Gender) String() string {
	return g.Value()
}

// GenderOf parses a canonical gender token. Unknown tokens are reported with
// ok == false and must be rejected by the caller.
func GenderOf(token string) (gender Gender, ok bool) {
	switch token {
	case genderMale:
		return Male, true
	case genderFemale:
		return Female, true
	case genderAndrogynous:
		return Androgynous, true
	default:
		return Androgynous, false
	}
}

// DetectGender guesses gender by the ending of a middle name (patronymic).
func DetectGender(middleName string) Gender {
	if strings.HasSuffix(middleName, "ич") {
		return Male
	}
	if strings.HasSuffix(middleName, "на") {
		return Female
	}
	return Androgynous
}

// Compatible reports whether a rule declared for one gender can serve a
// lookup for the other. Androgynous matches anything in both directions.
func (g Gender) Compatible(other Gender) bool {
	if g == Androgynous || other == Androgynous {
		return true
	}
	return g == other
}
