// Package evaluation measures an engine against a corpus of inflected names.
//
// A corpus is a tab separated file with a header line. Every other line holds
// the name, its expected form and a comma separated tag list whose first tag
// is the gender (мр, жр, ср) and third one is the case (им, рд, дт, вн, тв, пр).
package evaluation

import (
	"fmt"
	"strings"

	"petrovich.ru/petrovich/inflector"
	"petrovich.ru/petrovich/rules"
	"petrovich.ru/petrovich/types"
	"petrovich.ru/petrovich/utils"
)

type Sample struct {
	Line     int
	Name     string
	Expected string
	Gender   types.Gender
	Case     types.Case
}

type Failure struct {
	Sample
	Actual string
}

type Report struct {
	Role     rules.Role
	Total    int
	Failures []Failure
}

func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Total-len(r.Failures)) / float64(r.Total)
}

func ReadFile(filePath string) ([]Sample, error) {
	lines, err := utils.ReadList(filePath)
	if err != nil {
		return nil, err
	}
	samples, err := Parse(lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return samples, nil
}

// Parse skips the header line and blank lines.
func Parse(lines []string) ([]Sample, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	samples := make([]Sample, 0, len(lines)-1)
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		sample.Line = i + 2
		samples = append(samples, sample)
	}
	return samples, nil
}

func parseLine(line string) (Sample, error) {
	columns := strings.Split(line, "\t")
	if len(columns) < 3 {
		return Sample{}, fmt.Errorf("expected 3 columns, got %d", len(columns))
	}
	tags := strings.Split(columns[2], ",")
	if len(tags) < 3 {
		return Sample{}, fmt.Errorf("expected at least 3 tags, got %q", columns[2])
	}
	return Sample{
		Name:     columns[0],
		Expected: strings.ToLower(columns[1]),
		Gender:   genderOf(tags[0]),
		Case:     caseOf(tags[2]),
	}, nil
}

func genderOf(tag string) types.Gender {
	switch tag {
	case "мр":
		return types.Male
	case "жр":
		return types.Female
	default:
		return types.Androgynous
	}
}

func caseOf(tag string) types.Case {
	switch tag {
	case "рд":
		return types.Genitive
	case "дт":
		return types.Dative
	case "вн":
		return types.Accusative
	case "тв":
		return types.Instrumental
	case "пр":
		return types.Prepositional
	default:
		return types.Nominative
	}
}

func Run(engine *inflector.Engine, role rules.Role, samples []Sample) Report {
	report := Report{Role: role, Total: len(samples)}
	for _, sample := range samples {
		actual := engine.Inflect(role, sample.Name, sample.Gender, sample.Case)
		if actual != sample.Expected {
			report.Failures = append(report.Failures, Failure{Sample: sample, Actual: actual})
		}
	}
	return report
}
