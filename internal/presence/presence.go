package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker records who currently holds a live connection and when everyone
// was last seen. Redis-backed and best-effort; a nil *Tracker is a valid
// no-op for deployments without Redis.
type Tracker struct{ rdb *redis.Client }

func New(ctx context.Context, redisURL string) (*Tracker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil { return nil, err }
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil { return nil, err }
	return &Tracker{rdb: client}, nil
}

func onlineKey(id string) string   { return "presence:online:" + id }
func lastSeenKey(id string) string { return "presence:lastseen:" + id }

func (t *Tracker) SetOnline(ctx context.Context, userID string) error {
	if t == nil { return nil }
	now := strconv.FormatInt(time.Now().Unix(), 10)
	pipe := t.rdb.Pipeline()
	pipe.Set(ctx, onlineKey(userID), "1", 0)
	pipe.Set(ctx, lastSeenKey(userID), now, 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (t *Tracker) SetOffline(ctx context.Context, userID string) error {
	if t == nil { return nil }
	now := strconv.FormatInt(time.Now().Unix(), 10)
	pipe := t.rdb.Pipeline()
	pipe.Del(ctx, onlineKey(userID))
	pipe.Set(ctx, lastSeenKey(userID), now, 0)
	_, err := pipe.Exec(ctx)
	return err
}

// Get reports whether the user has a live connection and their last-seen
// instant (zero when never seen).
func (t *Tracker) Get(ctx context.Context, userID string) (bool, time.Time, error) {
	if t == nil { return false, time.Time{}, nil }
	online, err := t.rdb.Exists(ctx, onlineKey(userID)).Result()
	if err != nil { return false, time.Time{}, err }
	raw, err := t.rdb.Get(ctx, lastSeenKey(userID)).Result()
	if err == redis.Nil { return online == 1, time.Time{}, nil }
	if err != nil { return false, time.Time{}, err }
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil { return online == 1, time.Time{}, nil }
	return online == 1, time.Unix(ts, 0).UTC(), nil
}

func (t *Tracker) Ping(ctx context.Context) error {
	if t == nil { return nil }
	return t.rdb.Ping(ctx).Err()
}

func (t *Tracker) Close() error {
	if t == nil { return nil }
	return t.rdb.Close()
}
