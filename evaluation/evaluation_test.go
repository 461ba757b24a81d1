package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"petrovich.ru/petrovich/inflector"
	"petrovich.ru/petrovich/rules"
	"petrovich.ru/petrovich/rulesource"
	"petrovich.ru/petrovich/types"
)

func newEngine(t *testing.T) *inflector.Engine {
	t.Helper()
	engine, err := inflector.New(context.Background(), rulesource.File{Path: "../resources/rules.yml"})
	require.NoError(t, err)
	return engine
}

func TestReadFile(t *testing.T) {
	samples, err := ReadFile("testdata/surnames.tsv")
	require.NoError(t, err)
	require.Len(t, samples, 9)
	assert.Equal(t, Sample{
		Line:     2,
		Name:     "Иванов",
		Expected: "иванова",
		Gender:   types.Male,
		Case:     types.Genitive,
	}, samples[0])
	assert.Equal(t, types.Nominative, samples[8].Case)

	_, err = ReadFile("testdata/missing.tsv")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	samples, err := Parse([]string{
		"word\tlemma\ttags",
		"Саша\tСаши\tср,ед,рд",
		"",
		"Анна\tАнне\tжр,ед,дт",
	})
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, types.Androgynous, samples[0].Gender)
	assert.Equal(t, 4, samples[1].Line)
	assert.Equal(t, types.Female, samples[1].Gender)
	assert.Equal(t, types.Dative, samples[1].Case)

	samples, err = Parse(nil)
	assert.NoError(t, err)
	assert.Empty(t, samples)

	_, err = Parse([]string{"header", "Анна\tАнне"})
	assert.ErrorContains(t, err, "line 2")

	_, err = Parse([]string{"header", "Анна\tАнне\tжр,ед"})
	assert.ErrorContains(t, err, "tags")
}

func TestRunSurnames(t *testing.T) {
	samples, err := ReadFile("testdata/surnames.tsv")
	require.NoError(t, err)

	report := Run(newEngine(t), rules.LastName, samples)
	assert.Equal(t, 9, report.Total)
	assert.Empty(t, report.Failures)
	assert.Equal(t, 1.0, report.Accuracy())
}

func TestRunReportsFailures(t *testing.T) {
	samples := []Sample{
		{Line: 2, Name: "Пётр", Expected: "петра", Gender: types.Male, Case: types.Genitive},
		{Line: 3, Name: "Пётр", Expected: "пётра", Gender: types.Male, Case: types.Genitive},
	}
	report := Run(newEngine(t), rules.FirstName, samples)
	assert.Equal(t, 2, report.Total)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 3, report.Failures[0].Line)
	assert.Equal(t, "петра", report.Failures[0].Actual)
	assert.Equal(t, 0.5, report.Accuracy())

	assert.Equal(t, 0.0, Report{}.Accuracy())
}
