package inflector

import (
	"strings"

	"petrovich.ru/petrovich/rules"
	"petrovich.ru/petrovich/types"
)

type Segment struct {
	Word     string `json:"word"`
	Result   string `json:"result"`
	Matched  bool   `json:"matched"`
	List     string `json:"list,omitempty"`
	Index    int    `json:"index"`
	Modifier string `json:"modifier,omitempty"`
}

type Trace struct {
	Role     string    `json:"role"`
	Gender   string    `json:"gender"`
	Case     string    `json:"case"`
	Result   string    `json:"result"`
	Segments []Segment `json:"segments"`
}

// Matched reports whether every non-empty word was served by some rule.
func (trace Trace) Matched() bool {
	for _, segment := range trace.Segments {
		if segment.Word != "" && !segment.Matched {
			return false
		}
	}
	return len(trace.Segments) > 0
}

// Trace inflects like Inflect and records which rule handled each word.
func (engine *Engine) Trace(role rules.Role, name string, gender types.Gender, c types.Case) Trace {
	trace := Trace{
		Role:   role.Value(),
		Gender: gender.Value(),
		Case:   c.Value(),
	}
	name = normalize(name)
	if name == "" {
		return trace
	}
	group := engine.rules.Group(role)
	words := strings.Split(name, wordSeparator)
	results := make([]string, len(words))
	trace.Segments = make([]Segment, len(words))
	for i, word := range words {
		segment := Segment{Word: word, Result: word, Index: -1}
		if word != "" {
			if match, ok := group.Lookup(word, gender, i == 0); ok {
				segment.Matched = true
				segment.List = match.List.String()
				segment.Index = match.Index
				segment.Modifier, _ = match.Rule.Modifier(c)
				segment.Result = match.Rule.Apply(word, c)
			}
		}
		results[i] = segment.Result
		trace.Segments[i] = segment
	}
	trace.Result = strings.Join(results, wordSeparator)
	return trace
}
