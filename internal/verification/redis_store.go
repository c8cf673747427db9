package verification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "verify:code:"

// consumeScript checks and deletes a code in one atomic step so two
// concurrent checks can never both succeed on the same code.
var consumeScript = redis.NewScript(`
local value = redis.call('HGET', KEYS[1], 'value')
if not value then return -1 end
local exp = tonumber(redis.call('HGET', KEYS[1], 'expires_at'))
if tonumber(ARGV[2]) >= exp then return -2 end
if value ~= ARGV[1] then return -3 end
redis.call('DEL', KEYS[1])
return 1
`)

// RedisStore keeps verification codes in Redis, one hash per contact.
// Hash TTL runs past the code expiry so an expired-but-not-yet-evicted
// code still reports ErrCodeExpired rather than ErrCodeNotFound.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed code store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save stores the code under its contact key, superseding any prior code.
func (s *RedisStore) Save(ctx context.Context, code Code) error {
	key := codeKeyPrefix + code.Contact
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"value", code.Value,
		"purpose", string(code.Purpose),
		"issued_at", code.IssuedAt.Unix(),
		"expires_at", code.ExpiresAt.Unix(),
	)
	pipe.Expire(ctx, key, 2*code.ExpiresAt.Sub(code.IssuedAt))
	_, err := pipe.Exec(ctx)
	return err
}

// Consume validates and deletes the contact's code atomically.
func (s *RedisStore) Consume(ctx context.Context, contact, submitted string, now time.Time) error {
	res, err := consumeScript.Run(ctx, s.client, []string{codeKeyPrefix + contact}, submitted, now.Unix()).Int()
	if err != nil {
		return err
	}
	return scriptResult(res)
}

// Peek validates the contact's code without consuming it.
func (s *RedisStore) Peek(ctx context.Context, contact, submitted string, now time.Time) error {
	fields, err := s.client.HGetAll(ctx, codeKeyPrefix+contact).Result()
	if err != nil {
		return err
	}
	value, ok := fields["value"]
	if !ok {
		return ErrCodeNotFound
	}
	exp, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return fmt.Errorf("corrupt expires_at for %s: %w", contact, err)
	}
	if now.Unix() >= exp {
		return ErrCodeExpired
	}
	if value != submitted {
		return ErrCodeMismatch
	}
	return nil
}

func scriptResult(res int) error {
	switch res {
	case 1:
		return nil
	case -1:
		return ErrCodeNotFound
	case -2:
		return ErrCodeExpired
	case -3:
		return ErrCodeMismatch
	default:
		return fmt.Errorf("unexpected consume result %d", res)
	}
}
