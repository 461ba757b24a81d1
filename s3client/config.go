package s3client

import "github.com/kelseyhightower/envconfig"

type EnvironmentConfig struct {
	BucketName  string `envconfig:"PETROVICH_S3_BUCKET" required:"true"`
	Env         string `envconfig:"PETROVICH_ENV" default:"prod"`
	Region      string `envconfig:"PETROVICH_AWS_REGION" required:"true"`
	AwsEndpoint string `envconfig:"PETROVICH_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"PETROVICH_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"PETROVICH_AWS_ACCESS_KEY" default:""`
	MaxRetries  int    `envconfig:"PETROVICH_AWS_MAX_RETRIES" default:"4"`
}

func ReadEnvironment() (EnvironmentConfig, error) {
	var config EnvironmentConfig
	if err := envconfig.Process("", &config); err != nil {
		return config, err
	}
	return config, nil
}

// customEndpoint is honoured only in dev, where a local S3 replacement is used.
func (env EnvironmentConfig) customEndpoint() bool {
	return env.Env == "dev" && env.AwsEndpoint != ""
}
