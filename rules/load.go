package rules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"petrovich.ru/petrovich/types"
	"petrovich.ru/petrovich/utils"
)

// Source hands over the raw text of a rule table.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

type SkippedRecord struct {
	Role   Role
	List   ListKind
	Index  int
	Line   int
	Reason string
}

func (r SkippedRecord) String() string {
	return fmt.Sprintf("%s.%s[%d] (line %d): %s", r.Role, r.List, r.Index, r.Line, r.Reason)
}

type document struct {
	FirstName  groupRecord `yaml:"firstname"`
	LastName   groupRecord `yaml:"lastname"`
	MiddleName groupRecord `yaml:"middlename"`
}

type groupRecord struct {
	Exceptions []yaml.Node `yaml:"exceptions"`
	Suffixes   []yaml.Node `yaml:"suffixes"`
}

type ruleRecord struct {
	Gender *string   `yaml:"gender"`
	Test   []string  `yaml:"test"`
	Mods   []string  `yaml:"mods"`
	Tags   yaml.Node `yaml:"tags"`
}

func LoadSource(ctx context.Context, source Source) (*Rules, error) {
	data, err := source.Fetch(ctx)
	if err != nil {
		return nil, unreadable(source.Name(), err)
	}
	return parse(source.Name(), data)
}

func LoadFile(filePath string) (*Rules, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, unreadable(filePath, err)
	}
	return parse(filePath, data)
}

func Load(r io.Reader) (*Rules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, unreadable("", err)
	}
	return parse("", data)
}

func LoadBytes(data []byte) (*Rules, error) {
	return parse("", data)
}

func parse(sourceName string, data []byte) (*Rules, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, malformed(sourceName, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, malformed(sourceName, errors.New("rule table is empty"))
	}
	if top := root.Content[0]; top.Kind != yaml.MappingNode {
		return nil, malformed(sourceName, fmt.Errorf("rule table must be a mapping, got %s at line %d", top.Tag, top.Line))
	}

	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, malformed(sourceName, err)
	}

	rules := &Rules{fingerprint: utils.HashBytes(data)}
	rules.firstName = rules.group(FirstName, doc.FirstName)
	rules.lastName = rules.group(LastName, doc.LastName)
	rules.middleName = rules.group(MiddleName, doc.MiddleName)
	return rules, nil
}

func (rules *Rules) group(role Role, record groupRecord) RuleGroup {
	return RuleGroup{
		exceptions: rules.ruleList(role, Exceptions, record.Exceptions),
		suffixes:   rules.ruleList(role, Suffixes, record.Suffixes),
	}
}

func (rules *Rules) ruleList(role Role, list ListKind, nodes []yaml.Node) []*Rule {
	result := make([]*Rule, 0, len(nodes))
	for i := range nodes {
		rule, err := toRule(&nodes[i])
		if err != nil {
			rules.skipped = append(rules.skipped, SkippedRecord{
				Role:   role,
				List:   list,
				Index:  i,
				Line:   nodes[i].Line,
				Reason: err.Error(),
			})
			continue
		}
		result = append(result, rule)
	}
	return result
}

func toRule(node *yaml.Node) (*Rule, error) {
	var record ruleRecord
	if err := node.Decode(&record); err != nil {
		return nil, err
	}
	if record.Gender == nil {
		return nil, errors.New("gender is missing")
	}
	gender, ok := types.GenderOf(*record.Gender)
	if !ok {
		return nil, fmt.Errorf("unknown gender %q", *record.Gender)
	}
	if record.Test == nil {
		return nil, errors.New("test is missing")
	}
	if record.Mods == nil {
		return nil, errors.New("mods are missing")
	}
	return &Rule{
		gender:        gender,
		test:          record.Test,
		mods:          record.Mods,
		firstWordOnly: record.Tags.Kind != 0,
	}, nil
}
