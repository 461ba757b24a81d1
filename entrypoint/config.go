package main

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"petrovich.ru/petrovich/rules"
	"petrovich.ru/petrovich/rulesource"
	"petrovich.ru/petrovich/s3client"
)

type Config struct {
	RulesPath        string `envconfig:"PETROVICH_RULES_PATH" default:"resources/rules.yml"`
	RulesS3Key       string `envconfig:"PETROVICH_RULES_S3_KEY" default:""`
	RulesOverlayPath string `envconfig:"PETROVICH_RULES_OVERLAY_PATH" default:""`
	RulesWatch       bool   `envconfig:"PETROVICH_RULES_WATCH" default:"false"`
	RestAPIActive    bool   `envconfig:"PETROVICH_REST_API_ACTIVE" default:"false"`
	RestAPIPort      string `envconfig:"PETROVICH_REST_API_PORT" default:"10000"`
	PipelineWorkers  int    `envconfig:"PETROVICH_PIPELINE_WORKERS" default:"0"`
}

func readConfig() (Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// ruleSource builds the configured table source together with the local
// files worth watching. release frees whatever the source holds.
func ruleSource(config Config) (source rules.Source, watched []string, release func(), err error) {
	release = func() {}
	if config.RulesS3Key != "" {
		client, err := s3client.New()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create S3 client for rule table: %w", err)
		}
		source = rulesource.NewS3(client, config.RulesS3Key)
		release = client.Close
	} else {
		source = rulesource.File{Path: config.RulesPath}
		watched = append(watched, config.RulesPath)
	}
	if config.RulesOverlayPath != "" {
		source = rulesource.Overlay(source, rulesource.File{Path: config.RulesOverlayPath})
		watched = append(watched, config.RulesOverlayPath)
	}
	return source, watched, release, nil
}

func loadRules(ctx context.Context, config Config) (*rules.Rules, string, error) {
	source, _, release, err := ruleSource(config)
	if err != nil {
		return nil, "", err
	}
	defer release()
	table, err := rules.LoadSource(ctx, source)
	return table, source.Name(), err
}
