package rate

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// consumeAllLua performs the evaluate-then-commit sequence atomically.
//
// KEYS[i]     = counter key for rule i
// ARGV[2*i-1] = limit for rule i
// ARGV[2*i]   = window for rule i in milliseconds
//
// Returns 1 when every counter was incremented, 0 when any rule would be
// exceeded (in which case nothing was written). Counters rely on PEXPIRE for
// fixed-window reset: the TTL is set only when INCR creates the key.
var consumeAllLua = redis.NewScript(`
local n = #KEYS

for i = 1, n do
  local limit = tonumber(ARGV[2*i-1])
  local count = tonumber(redis.call('GET', KEYS[i]) or '0')
  if count + 1 > limit then
    return 0
  end
end

for i = 1, n do
  local windowMs = tonumber(ARGV[2*i])
  local count = redis.call('INCR', KEYS[i])
  if count == 1 then
    redis.call('PEXPIRE', KEYS[i], windowMs)
  end
end

return 1
`)

// RedisStore is a Redis-backed [CounterStore] using a Lua script for
// multi-key atomicity.
//
// RedisStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [RedisStore] with the given key prefix
// ("rl" when empty).
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

// ConsumeAll implements [CounterStore]. Redis executes the script as one
// atomic unit, so concurrent calls sharing a key serialize server-side.
func (s *RedisStore) ConsumeAll(ctx context.Context, rules []Rule) (bool, error) {
	keys := make([]string, 0, len(rules))
	argv := make([]interface{}, 0, 2*len(rules))
	for _, r := range rules {
		keys = append(keys, s.prefix+":"+r.Key)
		argv = append(argv, r.Limit, r.Window.Milliseconds())
	}

	result, err := consumeAllLua.Run(ctx, s.redis, keys, argv...).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return result == 1, nil
}
