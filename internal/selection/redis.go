// internal/selection/redis.go
package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-shift-bot/internal/calendar"

	"github.com/redis/go-redis/v9"
)

// pressScript takes the armed date or arms ARGV[1] with a TTL of ARGV[2] ms (0: none).
var pressScript = redis.NewScript(`
local start = redis.call('GETDEL', KEYS[1])
if start then
	return start
end
if tonumber(ARGV[2]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return false
`)

// Redis shares armed selections between bot and API replicas.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func key(staffID uint) string {
	return fmt.Sprintf("absence_selection:%d", staffID)
}

func (r *Redis) Arm(ctx context.Context, staffID uint, start time.Time) error {
	return r.rdb.Set(ctx, key(staffID), calendar.Format(start), r.ttl).Err()
}

func (r *Redis) Take(ctx context.Context, staffID uint) (time.Time, bool, error) {
	val, err := r.rdb.GetDel(ctx, key(staffID)).Result()
	return parseArmed(val, err)
}

func (r *Redis) Press(ctx context.Context, staffID uint, date time.Time) (time.Time, bool, error) {
	val, err := pressScript.Run(ctx, r.rdb, []string{key(staffID)},
		calendar.Format(date), r.ttl.Milliseconds()).Text()
	return parseArmed(val, err)
}

func (r *Redis) Clear(ctx context.Context, staffID uint) error {
	return r.rdb.Del(ctx, key(staffID)).Err()
}

func parseArmed(val string, err error) (time.Time, bool, error) {
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	start, err := calendar.Parse(val)
	if err != nil {
		return time.Time{}, false, err
	}
	return start, true, nil
}
