package verification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var reissueScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'code', ARGV[1], 'expires_at', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// Replies: {0} missing, {1} expired (evicted), {2} mismatch, {3, hash, name} consumed.
var consumeScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
	return {0}
end
local expires = tonumber(redis.call('HGET', KEYS[1], 'expires_at'))
if expires == nil or expires <= tonumber(ARGV[2]) then
	redis.call('DEL', KEYS[1])
	return {1}
end
if code ~= ARGV[1] then
	return {2}
end
local vals = redis.call('HMGET', KEYS[1], 'password_hash', 'nombre')
redis.call('DEL', KEYS[1])
return {3, vals[1] or '', vals[2] or ''}
`)

// RedisStore shares pending registrations between server instances.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "verification:"}
}

// NewRedisStoreFromURL connects to redis://... and pings it.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedisStore(client), nil
}

func (s *RedisStore) key(email string) string {
	return s.prefix + NormalizeEmail(email)
}

func (s *RedisStore) Put(ctx context.Context, p Pending) error {
	key := s.key(p.Email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]interface{}{
			"email":         NormalizeEmail(p.Email),
			"code":          p.Code,
			"expires_at":    p.ExpiresAt.UnixMilli(),
			"password_hash": p.PasswordHash,
			"nombre":        p.DisplayName,
		})
		pipe.PExpireAt(ctx, key, p.ExpiresAt.Add(expiredGrace))
		return nil
	})
	return err
}

func (s *RedisStore) Reissue(ctx context.Context, email, code string, expiresAt time.Time) (Pending, error) {
	key := s.key(email)
	ttl := time.Until(expiresAt.Add(expiredGrace)).Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ok, err := reissueScript.Run(ctx, s.client, []string{key}, code, expiresAt.UnixMilli(), ttl).Int()
	if err != nil {
		return Pending{}, err
	}
	if ok == 0 {
		return Pending{}, ErrNotFound
	}

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Pending{}, err
	}
	return Pending{
		Email:        NormalizeEmail(email),
		Code:         code,
		ExpiresAt:    expiresAt,
		PasswordHash: fields["password_hash"],
		DisplayName:  fields["nombre"],
	}, nil
}

func (s *RedisStore) Consume(ctx context.Context, email, code string, now time.Time) (Pending, error) {
	reply, err := consumeScript.Run(ctx, s.client, []string{s.key(email)}, code, now.UnixMilli()).Slice()
	if err != nil {
		return Pending{}, err
	}
	if len(reply) == 0 {
		return Pending{}, fmt.Errorf("verification: empty reply from redis")
	}

	status, err := toInt(reply[0])
	if err != nil {
		return Pending{}, err
	}

	switch status {
	case 0:
		return Pending{}, ErrNotFound
	case 1:
		return Pending{}, ErrExpired
	case 2:
		return Pending{}, ErrMismatch
	}

	if len(reply) < 3 {
		return Pending{}, fmt.Errorf("verification: malformed reply %v", reply)
	}
	hash, _ := reply[1].(string)
	name, _ := reply[2].(string)
	return Pending{
		Email:        NormalizeEmail(email),
		Code:         code,
		PasswordHash: hash,
		DisplayName:  name,
	}, nil
}

func toInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("verification: unexpected reply type %T", v)
	}
}
