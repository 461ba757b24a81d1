package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"petrovich.ru/petrovich/inflector"
	"petrovich.ru/petrovich/rulesource"
)

func newEngine(t *testing.T) *inflector.Engine {
	t.Helper()
	engine, err := inflector.New(context.Background(), rulesource.File{Path: "../resources/rules.yml"})
	require.NoError(t, err)
	return engine
}

func run(t *testing.T, pipeline Pipeline, request Request) Response {
	t.Helper()
	var response Response
	require.NoError(t, json.Unmarshal([]byte(<-pipeline(request)), &response))
	return response
}

func TestPipeline(t *testing.T) {
	pipeline := New(inflector.NewReloadable(newEngine(t)), Params{Workers: 2})
	request := Request{
		Tid: "batch-1",
		Entries: []Entry{
			{ID: "1", LastName: "Иванов", FirstName: "Пётр", MiddleName: "Сергеевич", Cases: []string{"genitive"}},
			{ID: "2", LastName: "Дубовицкая", FirstName: "Мария", Gender: "female", Cases: []string{"dative", "instrumental"}},
			{ID: "3", LastName: "Смит", Gender: "neuter"},
			{ID: "4"},
		},
	}

	response := run(t, pipeline, request)
	assert.Equal(t, "batch-1", response.Tid)
	require.Len(t, response.Results, 4)

	expected := []Result{
		{
			ID:     "1",
			Gender: "male",
			Forms: map[string]inflector.FullName{
				"genitive": {Last: "иванова", First: "петра", Middle: "сергеевича"},
			},
		},
		{
			ID:     "2",
			Gender: "female",
			Forms: map[string]inflector.FullName{
				"dative":       {Last: "дубовицкой", First: "марии"},
				"instrumental": {Last: "дубовицкой", First: "марией"},
			},
		},
	}
	if diff := cmp.Diff(expected, response.Results[:2]); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}

	assert.Equal(t, "3", response.Results[2].ID)
	assert.Contains(t, response.Results[2].Error, "Gender")
	assert.Nil(t, response.Results[2].Forms)
	assert.Equal(t, "4", response.Results[3].ID)
	assert.Contains(t, response.Results[3].Error, "LastName")
}

func TestPipelineEmptyRequest(t *testing.T) {
	pipeline := New(inflector.NewReloadable(newEngine(t)), Params{})
	response := run(t, pipeline, Request{Tid: "empty"})
	assert.Equal(t, "empty", response.Tid)
	assert.Empty(t, response.Results)
}

func TestPipelineUsesCurrentEngine(t *testing.T) {
	engines := inflector.NewReloadable(newEngine(t))
	pipeline := New(engines, Params{Workers: 1})
	entry := Entry{ID: "1", FirstName: "Анна", Cases: []string{"genitive"}}

	response := run(t, pipeline, Request{Entries: []Entry{entry}})
	assert.Equal(t, "анны", response.Results[0].Forms["genitive"].First)

	empty, err := inflector.New(context.Background(), rulesource.Bytes{Data: []byte("firstname: {}")})
	require.NoError(t, err)
	engines.Swap(empty)

	response = run(t, pipeline, Request{Entries: []Entry{entry}})
	assert.Equal(t, "анна", response.Results[0].Forms["genitive"].First)
}

func TestInflectAllCases(t *testing.T) {
	result, err := Inflect(newEngine(t), Entry{LastName: "Толстой", Gender: "male"})
	require.NoError(t, err)
	assert.Equal(t, "male", result.Gender)

	expected := map[string]inflector.FullName{
		"nominative":    {Last: "толстой"},
		"genitive":      {Last: "толстого"},
		"dative":        {Last: "толстому"},
		"accusative":    {Last: "толстого"},
		"instrumental":  {Last: "толстым"},
		"prepositional": {Last: "толстом"},
	}
	if diff := cmp.Diff(expected, result.Forms); diff != "" {
		t.Errorf("unexpected forms (-want +got):\n%s", diff)
	}
	assert.Empty(t, result.Traces)
}

func TestInflectExplain(t *testing.T) {
	result, err := Inflect(newEngine(t), Entry{
		FirstName:  "Лев",
		MiddleName: "Николаевич",
		Cases:      []string{"genitive"},
		Explain:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "male", result.Gender)
	require.Len(t, result.Traces, 2)
	assert.Equal(t, "firstname", result.Traces[0].Role)
	assert.Equal(t, "льва", result.Traces[0].Result)
	assert.Equal(t, "exceptions", result.Traces[0].Segments[0].List)
	assert.Equal(t, "middlename", result.Traces[1].Role)
	assert.Equal(t, "николаевича", result.Traces[1].Result)
}

func TestInflectValidation(t *testing.T) {
	engine := newEngine(t)
	tests := []struct {
		name  string
		entry Entry
		field string
	}{
		{"no names", Entry{ID: "x"}, "LastName"},
		{"unknown gender", Entry{FirstName: "иван", Gender: "мужской"}, "Gender"},
		{"unknown case", Entry{FirstName: "иван", Cases: []string{"vocative"}}, "Cases[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inflect(engine, tt.entry)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestInflectMetrics(t *testing.T) {
	engine := newEngine(t)
	matched := inflectionsTotal.WithLabelValues("lastname", outcomeMatched)
	passthrough := inflectionsTotal.WithLabelValues("lastname", outcomePassthrough)
	invalid := entriesTotal.WithLabelValues(outcomeInvalid)
	failed := entriesTotal.WithLabelValues(outcomeFailed)

	beforeMatched := testutil.ToFloat64(matched)
	beforePassthrough := testutil.ToFloat64(passthrough)
	beforeInvalid := testutil.ToFloat64(invalid)
	beforeFailed := testutil.ToFloat64(failed)

	_, err := Inflect(engine, Entry{LastName: "петров", Gender: "male", Cases: []string{"genitive"}})
	require.NoError(t, err)
	_, err = Inflect(engine, Entry{LastName: "o'neil", Gender: "male", Cases: []string{"genitive", "dative"}})
	require.NoError(t, err)
	_, err = Inflect(engine, Entry{})
	require.Error(t, err)

	assert.Equal(t, beforeMatched+1, testutil.ToFloat64(matched))
	assert.Equal(t, beforePassthrough+2, testutil.ToFloat64(passthrough))
	assert.Equal(t, beforeInvalid+1, testutil.ToFloat64(invalid))

	// an invalid entry going through the batch path is not a failure
	_, err = process(engine, Entry{ID: "x", LastName: "иванов", Gender: "robot"})
	require.Error(t, err)
	assert.Equal(t, beforeInvalid+2, testutil.ToFloat64(invalid))
	assert.Equal(t, beforeFailed, testutil.ToFloat64(failed))

	// a panic is
	_, err = process(nil, Entry{LastName: "иванов", Gender: "male"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
}
