package inflector

import (
	"strings"

	"petrovich.ru/petrovich/types"
)

type FullName struct {
	Last   string `json:"last_name,omitempty"`
	First  string `json:"first_name,omitempty"`
	Middle string `json:"middle_name,omitempty"`
}

// String joins the present parts as "last first middle".
func (fn FullName) String() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{fn.Last, fn.First, fn.Middle} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// ResolveGender keeps an explicit gender and otherwise tries the middle name.
func ResolveGender(fn FullName, gender types.Gender) types.Gender {
	if gender != types.Androgynous || fn.Middle == "" {
		return gender
	}
	return types.DetectGender(normalize(fn.Middle))
}

func (engine *Engine) FullName(fn FullName, gender types.Gender, c types.Case) FullName {
	gender = ResolveGender(fn, gender)
	var result FullName
	if fn.Last != "" {
		result.Last = engine.LastName(fn.Last, gender, c)
	}
	if fn.First != "" {
		result.First = engine.FirstName(fn.First, gender, c)
	}
	if fn.Middle != "" {
		result.Middle = engine.MiddleName(fn.Middle, gender, c)
	}
	return result
}
