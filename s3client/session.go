package s3client

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/rs/zerolog"
)

var errNoSession = errors.New("could not get S3 session")

// sessionHolder owns the current session. Callers borrow it through
// requestCh and report failures through errorCh, which makes the refresher
// goroutine build a new one.
type sessionHolder struct {
	curr      *session.Session
	requestCh chan *session.Session
	errorCh   chan error
	closeCh   chan struct{}
}

func newSessionHolder() *sessionHolder {
	return &sessionHolder{
		requestCh: make(chan *session.Session),
		errorCh:   make(chan error),
		closeCh:   make(chan struct{}, 1),
	}
}

func (holder *sessionHolder) run(env EnvironmentConfig) {
	for {
		select {
		case holder.requestCh <- holder.curr:
			continue
		default:
		}
		select {
		case holder.requestCh <- holder.curr:
		case err := <-holder.errorCh:
			clientLogger.Error().Err(err).Msg("Caught error while using S3 session, trying to refresh it")
			if err = holder.acquire(env); err != nil {
				clientLogger.Error().Err(err).Msg("Caught error while refreshing S3 session")
				continue
			}
			clientLogger.Info().Msg("Successfully refreshed session")
		case <-holder.closeCh:
			clientLogger.Info().Msg("Closing client")
			return
		}
	}
}

func (holder *sessionHolder) get() (*session.Session, error) {
	sess := <-holder.requestCh
	if sess == nil {
		return nil, errNoSession
	}
	return sess, nil
}

// refresh reports err and waits for the next session.
func (holder *sessionHolder) refresh(err error) (*session.Session, error) {
	var sess *session.Session
	select {
	case holder.errorCh <- err:
		sess = <-holder.requestCh
	case sess = <-holder.requestCh:
	}
	if sess == nil {
		return nil, fmt.Errorf("failed to refresh session after: %w", err)
	}
	return sess, nil
}

// acquire prefers the instance role and falls back to static credentials
// from the environment.
func (holder *sessionHolder) acquire(env EnvironmentConfig) error {
	sess, err := verifiedSession(instanceConfig(env))
	if err == nil {
		holder.curr = sess
		clientLogger.Info().Msg("S3 session successfully initialized using EC2")
		return nil
	}
	clientLogger.Info().Err(err).Msg("Could not initialize S3 session using EC2, trying env credentials")

	cfg, err := staticConfig(env)
	if err != nil {
		holder.curr = nil
		return err
	}
	sess, err = verifiedSession(cfg)
	if err != nil {
		holder.curr = nil
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return err
	}
	holder.curr = sess
	clientLogger.Info().Msg("S3 session successfully initialized using env credentials")
	return nil
}

func verifiedSession(cfg *aws.Config) (*session.Session, error) {
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err != nil {
		return nil, err
	}
	return sess, nil
}

func instanceConfig(env EnvironmentConfig) *aws.Config {
	cfg := aws.NewConfig().
		WithRegion(env.Region).
		WithMaxRetries(env.MaxRetries).
		WithLogLevel(aws.LogDebug)
	return withEndpoint(cfg, env)
}

func staticConfig(env EnvironmentConfig) (*aws.Config, error) {
	creds := credentials.NewStaticCredentials(env.AccessKeyID, env.AccessKey, "")
	if _, err := creds.Get(); err != nil {
		return nil, fmt.Errorf("invalid credentials in environment: %w", err)
	}
	return instanceConfig(env).WithCredentials(creds), nil
}

func withEndpoint(cfg *aws.Config, env EnvironmentConfig) *aws.Config {
	if !env.customEndpoint() {
		return cfg
	}
	return cfg.WithEndpoint(env.AwsEndpoint).WithS3ForcePathStyle(true)
}

type sdkLogger struct {
	logger zerolog.Logger
}

func (l sdkLogger) Log(v ...interface{}) {
	l.logger.Debug().Msg(fmt.Sprint(v...))
}
