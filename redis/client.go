package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type DB int
type ReleaseLock func() error

var ErrNotFound = errors.New("document not found")

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
}

type Config struct {
	LockExpirationSeconds   int     `envconfig:"PETROVICH_REDIS_LOCK_EXPIRATION" default:"3"`
	Host                    string  `envconfig:"PETROVICH_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"PETROVICH_REDIS_PORT" required:"true"`
	HASentinelPort          string  `envconfig:"PETROVICH_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"PETROVICH_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"PETROVICH_REDIS_AUTH_PASSWORD" default:""`
	AuthRequired            bool    `envconfig:"PETROVICH_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"PETROVICH_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"PETROVICH_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (Client, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Client{}, err
	}
	return NewClientWithConfig(cfg, db), nil
}

func NewClientWithConfig(cfg Config, db DB) Client {
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateFailoverClient(cfg, db)
	} else {
		client = CreateClient(cfg, db)
	}
	return Client{
		client:         client,
		lockExpiration: time.Duration(cfg.LockExpirationSeconds) * time.Second,
	}
}

func CreateFailoverClient(cfg Config, db DB) *redis.ClusterClient {
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClusterClient(&options)
}

func CreateClient(cfg Config, db DB) *redis.Client {
	options := redis.Options{
		Addr:       fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

// GetDocument decodes the JSON document at redisKey into doc and returns the
// stored bytes.
func (client *Client) GetDocument(ctx context.Context, redisKey string, doc interface{}) ([]byte, error) {
	b, err := client.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", redisKey, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", redisKey, err)
	}
	return b, nil
}

// UpdateDocument reads the document under a lock, lets update change doc and
// writes it back. Fields other services keep in the document survive.
func (client *Client) UpdateDocument(ctx context.Context, redisKey string, doc interface{}, update func() error) (err error) {
	releaseLock, err := client.Lock(ctx, redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()

	original, err := client.GetDocument(ctx, redisKey, doc)
	if err != nil {
		return err
	}
	if err = update(); err != nil {
		return err
	}
	merged, err := MergeDocument(original, doc)
	if err != nil {
		return err
	}
	return client.SaveDoc(ctx, redisKey, merged)
}

// MergeDocument applies the JSON form of doc onto original as a merge patch.
func MergeDocument(original []byte, doc interface{}) ([]byte, error) {
	patch, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if len(original) == 0 {
		return patch, nil
	}
	return jsonpatch.MergePatch(original, patch)
}

func (client *Client) Lock(ctx context.Context, redisKey string) (ReleaseLock, error) {
	locker := redislock.New(client.client)
	strategy := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lock, err := locker.Obtain(ctx, "lock:"+redisKey, client.lockExpiration, &redislock.Options{RetryStrategy: strategy})
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", redisKey, err)
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (client *Client) SaveDoc(ctx context.Context, redisKey string, doc []byte) error {
	return client.client.Set(ctx, redisKey, doc, 0).Err()
}

func (client *Client) Close() error {
	return client.client.Close()
}
