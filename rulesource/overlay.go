package rulesource

import (
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"gopkg.in/yaml.v3"
	"petrovich.ru/petrovich/rules"
)

type overlay struct {
	base  rules.Source
	patch rules.Source
}

// Overlay merges patch onto base as a JSON merge patch (RFC 7386) before the
// table is parsed. Lists are replaced as a whole, null removes a key. Both
// documents may be written in YAML or JSON. The merged table is served as
// YAML with sorted keys, skipped record lines refer to that document.
func Overlay(base rules.Source, patch rules.Source) rules.Source {
	return &overlay{base: base, patch: patch}
}

func (o *overlay) Name() string {
	return fmt.Sprintf("%s+%s", o.base.Name(), o.patch.Name())
}

func (o *overlay) Fetch(ctx context.Context) ([]byte, error) {
	base, err := fetchJSON(ctx, o.base)
	if err != nil {
		return nil, err
	}
	patch, err := fetchJSON(ctx, o.patch)
	if err != nil {
		return nil, err
	}
	merged, err := jsonpatch.MergePatch(base, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge %s onto %s: %w", o.patch.Name(), o.base.Name(), err)
	}
	return toYAML(merged)
}

// toYAML lays the merged document out one record field per line, so skipped
// record lines point into the merged table instead of all being 1.
func toYAML(merged []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(merged, &doc); err != nil {
		return nil, fmt.Errorf("failed to read merged rule table: %w", err)
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged rule table: %w", err)
	}
	return b, nil
}

func fetchJSON(ctx context.Context, source rules.Source) ([]byte, error) {
	data, err := source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source.Name(), err)
	}
	if doc == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s to json: %w", source.Name(), err)
	}
	return b, nil
}
