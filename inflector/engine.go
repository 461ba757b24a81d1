package inflector

import (
	"context"
	"strings"

	"petrovich.ru/petrovich/logger"
	"petrovich.ru/petrovich/rules"
	"petrovich.ru/petrovich/types"
)

const wordSeparator = "-"

// Engine inflects names with an immutable rule table. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	rules *rules.Rules
}

func New(ctx context.Context, source rules.Source) (*Engine, error) {
	petrovichLogger := logger.NewLogger("Inflector")
	table, err := rules.LoadSource(ctx, source)
	if err != nil {
		petrovichLogger.Err(err).Str("source", source.Name()).Msg("Failed to load rule table")
		return nil, err
	}
	for _, skipped := range table.Skipped() {
		petrovichLogger.Warn().
			Str("source", source.Name()).
			Str("role", skipped.Role.Value()).
			Str("list", skipped.List.String()).
			Int("index", skipped.Index).
			Int("line", skipped.Line).
			Msg("Skipped rule record: " + skipped.Reason)
	}
	petrovichLogger.Info().
		Str("source", source.Name()).
		Int("rules", table.Len()).
		Int("skipped", len(table.Skipped())).
		Uint64("fingerprint", table.Fingerprint()).
		Msg("Rule table loaded")
	return NewFromRules(table), nil
}

func NewFromRules(table *rules.Rules) *Engine {
	return &Engine{rules: table}
}

func (engine *Engine) Rules() *rules.Rules {
	return engine.rules
}

func (engine *Engine) FirstName(name string, gender types.Gender, c types.Case) string {
	return engine.Inflect(rules.FirstName, name, gender, c)
}

func (engine *Engine) LastName(name string, gender types.Gender, c types.Case) string {
	return engine.Inflect(rules.LastName, name, gender, c)
}

func (engine *Engine) MiddleName(name string, gender types.Gender, c types.Case) string {
	return engine.Inflect(rules.MiddleName, name, gender, c)
}

// Inflect never fails: words without a matching rule are returned as they
// are, only trimmed and lowercased.
func (engine *Engine) Inflect(role rules.Role, name string, gender types.Gender, c types.Case) string {
	name = normalize(name)
	if name == "" {
		return ""
	}
	group := engine.rules.Group(role)
	words := strings.Split(name, wordSeparator)
	for i, word := range words {
		if word == "" {
			continue
		}
		if rule, ok := group.Find(word, gender, i == 0); ok {
			words[i] = rule.Apply(word, c)
		}
	}
	return strings.Join(words, wordSeparator)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
