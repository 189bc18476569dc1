package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/runcondition/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "runcondition:"

// appendScript pushes a cause only if the build record exists, so a cause can
// never be recorded against a deleted or unknown build. The cause list takes the
// remaining expiry of the build record.
var appendScript = backend.NewScript(`
	if redis.call("exists", KEYS[1]) == 0 then
		return -1
	end
	local n = redis.call("rpush", KEYS[2], ARGV[1])
	local ttl = redis.call("pttl", KEYS[1])
	if ttl > 0 then
		redis.call("pexpire", KEYS[2], ttl)
	end
	return n
`)

// causesScript reads the cause list only if the build record exists.
var causesScript = backend.NewScript(`
	if redis.call("exists", KEYS[1]) == 0 then
		return false
	end
	return redis.call("lrange", KEYS[2], 0, -1)
`)

// Store implements ports.BuildStore using Redis.
//
// Build metadata is stored as JSON under <prefix>build:<id>. Causes are kept in
// a Redis list under <prefix>causes:<id>, so RPUSH preserves insertion order.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for builds.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// buildRecord is the persisted form of a build without its causes.
type buildRecord struct {
	ID          string            `json:"id"`
	Project     string            `json:"project"`
	Number      int               `json:"number"`
	ParentID    string            `json:"parent_id,omitempty"`
	Combination map[string]string `json:"combination,omitempty"`
}

func (s *Store) buildKey(id string) string {
	return s.prefix + "build:" + id
}

func (s *Store) causesKey(id string) string {
	return s.prefix + "causes:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the build and replaces its cause list.
func (s *Store) Save(ctx context.Context, build *domain.Build) error {
	data, err := json.Marshal(buildRecord{
		ID:          build.ID,
		Project:     build.Project,
		Number:      build.Number,
		ParentID:    build.ParentID,
		Combination: build.Combination,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal build: %w", err)
	}

	causes := make([]any, 0, len(build.Causes))
	for _, c := range build.Causes {
		raw, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal cause: %w", err)
		}
		causes = append(causes, raw)
	}

	pipe := s.client.TxPipeline()

	// 1. Save JSON with TTL
	// Use 0 for no expiration if ttl is not set.
	pipe.Set(ctx, s.buildKey(build.ID), data, s.ttl)

	// 2. Replace causes
	pipe.Del(ctx, s.causesKey(build.ID))
	if len(causes) > 0 {
		pipe.RPush(ctx, s.causesKey(build.ID), causes...)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.causesKey(build.ID), s.ttl)
		}
	}

	// 3. Add to Index (ZSET)
	// Score = Now + TTL. If TTL = 0, Score = +Inf (approx).
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: build.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the build and its causes.
func (s *Store) Load(ctx context.Context, buildID string) (*domain.Build, error) {
	val, err := s.client.Get(ctx, s.buildKey(buildID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrBuildNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec buildRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal build: %w", err)
	}

	causes, err := s.readCauses(ctx, buildID)
	if err != nil {
		return nil, err
	}

	return &domain.Build{
		ID:          rec.ID,
		Project:     rec.Project,
		Number:      rec.Number,
		Causes:      causes,
		ParentID:    rec.ParentID,
		Combination: rec.Combination,
	}, nil
}

// Causes returns the build's causes in insertion order.
func (s *Store) Causes(ctx context.Context, buildID string) ([]domain.Cause, error) {
	keys := []string{s.buildKey(buildID), s.causesKey(buildID)}
	raw, err := causesScript.Run(ctx, s.client, keys).StringSlice()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrBuildNotFound
		}
		return nil, fmt.Errorf("failed to read causes from redis: %w", err)
	}
	return decodeCauses(raw)
}

func (s *Store) readCauses(ctx context.Context, buildID string) ([]domain.Cause, error) {
	raw, err := s.client.LRange(ctx, s.causesKey(buildID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read causes from redis: %w", err)
	}
	return decodeCauses(raw)
}

func decodeCauses(raw []string) ([]domain.Cause, error) {
	causes := make([]domain.Cause, 0, len(raw))
	for _, item := range raw {
		var c domain.Cause
		if err := json.Unmarshal([]byte(item), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cause: %w", err)
		}
		causes = append(causes, c)
	}
	return causes, nil
}

// AppendCause atomically pushes a cause onto an existing build.
func (s *Store) AppendCause(ctx context.Context, buildID string, cause domain.Cause) error {
	raw, err := json.Marshal(cause)
	if err != nil {
		return fmt.Errorf("failed to marshal cause: %w", err)
	}

	keys := []string{s.buildKey(buildID), s.causesKey(buildID)}
	n, err := appendScript.Run(ctx, s.client, keys, raw).Int64()
	if err != nil {
		return fmt.Errorf("failed to append cause in redis: %w", err)
	}
	if n < 0 {
		return domain.ErrBuildNotFound
	}
	return nil
}

// Delete removes the build.
func (s *Store) Delete(ctx context.Context, buildID string) error {
	pipe := s.client.TxPipeline()

	pipe.Del(ctx, s.buildKey(buildID), s.causesKey(buildID))
	pipe.ZRem(ctx, s.indexKey(), buildID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored build IDs.
// Expired entries are pruned from the index lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired builds: %w", err)
	}

	builds, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}

	return builds, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
