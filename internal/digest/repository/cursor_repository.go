package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang-stock-digest/pkg/common"

	"github.com/redis/go-redis/v9"
)

// CursorRepository persists the Telegram update offset between runs.
type CursorRepository interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, offset int) error
}

// NewRedisCursorRepository stores the offset under a single Redis key.
func NewRedisCursorRepository(client *redis.Client) CursorRepository {
	return &redisCursorRepository{client: client, key: common.RedisKeyTelegramOffset}
}

type redisCursorRepository struct {
	client *redis.Client
	key    string
}

func (r *redisCursorRepository) Load(ctx context.Context) (int, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cursor: %w", err)
	}
	offset, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cursor %q: %w", val, err)
	}
	return offset, nil
}

func (r *redisCursorRepository) Save(ctx context.Context, offset int) error {
	if err := r.client.Set(ctx, r.key, offset, 0).Err(); err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}
	return nil
}

// NewMemoryCursorRepository keeps the offset in process memory, used when Redis is not configured.
func NewMemoryCursorRepository() CursorRepository {
	return &memoryCursorRepository{}
}

type memoryCursorRepository struct {
	mu     sync.Mutex
	offset int
}

func (r *memoryCursorRepository) Load(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset, nil
}

func (r *memoryCursorRepository) Save(_ context.Context, offset int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offset = offset
	return nil
}
