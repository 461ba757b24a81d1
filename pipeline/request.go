package pipeline

import (
	"github.com/go-playground/validator/v10"
	"petrovich.ru/petrovich/inflector"
	"petrovich.ru/petrovich/types"
)

var validate = validator.New()

type Entry struct {
	ID         string   `json:"id"`
	LastName   string   `json:"last_name" validate:"required_without_all=FirstName MiddleName"`
	FirstName  string   `json:"first_name"`
	MiddleName string   `json:"middle_name"`
	Gender     string   `json:"gender,omitempty" validate:"omitempty,oneof=male female androgynous"`
	Cases      []string `json:"cases,omitempty" validate:"omitempty,dive,oneof=nominative genitive dative accusative instrumental prepositional"`
	Explain    bool     `json:"explain,omitempty"`
}

func (entry Entry) Validate() error {
	return validate.Struct(entry)
}

func (entry Entry) FullName() inflector.FullName {
	return inflector.FullName{
		Last:   entry.LastName,
		First:  entry.FirstName,
		Middle: entry.MiddleName,
	}
}

// gender is valid only after Validate succeeded.
func (entry Entry) gender() types.Gender {
	gender, _ := types.GenderOf(entry.Gender)
	return inflector.ResolveGender(entry.FullName(), gender)
}

func (entry Entry) cases() []types.Case {
	if len(entry.Cases) == 0 {
		return types.AllCases()
	}
	cases := make([]types.Case, 0, len(entry.Cases))
	for _, token := range entry.Cases {
		if c, ok := types.CaseOf(token); ok {
			cases = append(cases, c)
		}
	}
	return cases
}

type Request struct {
	Tid     string  `json:"tid"`
	Entries []Entry `json:"entries"`
}

type Result struct {
	ID     string                        `json:"id"`
	Gender string                        `json:"gender,omitempty"`
	Forms  map[string]inflector.FullName `json:"forms,omitempty"`
	Traces []inflector.Trace             `json:"traces,omitempty"`
	Error  string                        `json:"error,omitempty"`
}

type Response struct {
	Tid     string   `json:"tid"`
	Results []Result `json:"results"`
}
