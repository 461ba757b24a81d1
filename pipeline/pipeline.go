package pipeline

import (
	"encoding/json"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"petrovich.ru/petrovich/inflector"
	"petrovich.ru/petrovich/logger"
	"petrovich.ru/petrovich/rules"
	"petrovich.ru/petrovich/types"
	"petrovich.ru/petrovich/utils"
)

// Pipeline answers with the JSON encoded Response of the request.
type Pipeline func(request Request) <-chan string

// EngineProvider hands out the engine to use for the next batch.
type EngineProvider interface {
	Get() *inflector.Engine
}

type Params struct {
	Workers int `json:"workers"`
}

func New(engines EngineProvider, params Params) Pipeline {
	petrovichLogger := logger.NewLogger("Batch pipeline")
	if params.Workers <= 0 {
		params.Workers = runtime.NumCPU()
	}
	petrovichLogger.Info().
		Interface("params", params).
		Msg("Starting batch pipeline (see parameters in 'params' field)")

	return func(request Request) <-chan string {
		responseChan := make(chan string, 1)
		pplnLog := petrovichLogger.With().Str("tid", request.Tid).Logger()

		go func() {
			defer close(responseChan)
			started := time.Now()
			pplnLog.Info().Int("entries", len(request.Entries)).Msg("Started batch pipeline")

			// the whole batch is served by one table even if a reload happens meanwhile
			engine := engines.Get()
			response := Response{
				Tid:     request.Tid,
				Results: make([]Result, len(request.Entries)),
			}

			var group errgroup.Group
			group.SetLimit(params.Workers)
			for i, entry := range request.Entries {
				i, entry := i, entry
				group.Go(func() error {
					result, err := process(engine, entry)
					if err != nil {
						pplnLog.Warn().Err(err).Str("entry_id", entry.ID).Msg("Failed to inflect entry")
						result.ID = entry.ID
						result.Error = err.Error()
					}
					response.Results[i] = result
					return nil
				})
			}
			_ = group.Wait()

			buf, err := json.Marshal(response)
			if err != nil {
				pplnLog.Err(err).Msg("Failed to marshall response")
			}
			batchDuration.Observe(time.Since(started).Seconds())
			pplnLog.Info().Msg("Finished batch pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}
}

// process counts an entry as failed only when inflecting it panicked, invalid
// entries are already counted by Inflect.
func process(engine *inflector.Engine, entry Entry) (result Result, err error) {
	finished := false
	defer func() {
		if !finished {
			entriesTotal.WithLabelValues(outcomeFailed).Inc()
		}
	}()
	defer utils.RecoverWithError(&err)
	result, err = Inflect(engine, entry)
	finished = true
	return result, err
}

// Inflect builds every requested form of a single entry. Validation errors
// are returned as is so callers may tell them apart from a failed batch.
func Inflect(engine *inflector.Engine, entry Entry) (Result, error) {
	result := Result{ID: entry.ID}
	if err := entry.Validate(); err != nil {
		entriesTotal.WithLabelValues(outcomeInvalid).Inc()
		return result, err
	}

	gender := entry.gender()
	result.Gender = gender.Value()
	result.Forms = make(map[string]inflector.FullName)
	for _, c := range entry.cases() {
		form := inflector.FullName{
			Last:   inflectPart(engine, rules.LastName, entry.LastName, gender, c, entry.Explain, &result),
			First:  inflectPart(engine, rules.FirstName, entry.FirstName, gender, c, entry.Explain, &result),
			Middle: inflectPart(engine, rules.MiddleName, entry.MiddleName, gender, c, entry.Explain, &result),
		}
		result.Forms[c.Value()] = form
	}
	entriesTotal.WithLabelValues(outcomeOK).Inc()
	return result, nil
}

func inflectPart(engine *inflector.Engine, role rules.Role, name string, gender types.Gender, c types.Case, explain bool, result *Result) string {
	if name == "" {
		return ""
	}
	trace := engine.Trace(role, name, gender, c)
	outcome := outcomePassthrough
	if trace.Matched() {
		outcome = outcomeMatched
	}
	inflectionsTotal.WithLabelValues(role.Value(), outcome).Inc()
	if explain {
		result.Traces = append(result.Traces, trace)
	}
	return trace.Result
}
