package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
)

const (
	keyPrefix = "availability:"
	genPrefix = "availability:gen:"

	// generationTTL outlives any in-flight resolve by a wide margin.
	generationTTL = 24 * time.Hour
)

var errStaleGeneration = errors.New("availability generation changed")

// AvailabilityRedisCache holds computed free slots. Entries expire after
// ttl. Invalidate deletes the entry and bumps a per-day generation counter
// in one MULTI; Set runs under WATCH on that counter and is dropped if the
// generation moved since Get.
type AvailabilityRedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityRedisCache(client *redis.Client, ttl time.Duration) *AvailabilityRedisCache {
	return &AvailabilityRedisCache{client: client, ttl: ttl}
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse REDIS_URL")
	}
	return redis.NewClient(opts), nil
}

func availabilityKey(practitionerID, date string) string {
	return keyPrefix + practitionerID + ":" + date
}

func generationKey(practitionerID, date string) string {
	return genPrefix + practitionerID + ":" + date
}

func parseGeneration(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, errors.Newf("unexpected generation value %T", v)
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse availability generation")
	}
	return gen, nil
}

func (c *AvailabilityRedisCache) Get(
	ctx context.Context,
	practitionerID string,
	date string,
) ([]appointment.Slot, int64, bool, error) {

	vals, err := c.client.MGet(ctx, availabilityKey(practitionerID, date), generationKey(practitionerID, date)).Result()
	if err != nil {
		return nil, 0, false, errors.Wrap(err, "redis get availability")
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, false, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}

	var slots []appointment.Slot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, 0, false, errors.Wrap(err, "decode cached availability")
	}
	return slots, gen, true, nil
}

func (c *AvailabilityRedisCache) Set(
	ctx context.Context,
	practitionerID string,
	date string,
	gen int64,
	slots []appointment.Slot,
) (bool, error) {

	if slots == nil {
		slots = []appointment.Slot{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return false, errors.Wrap(err, "encode availability")
	}

	genKey := generationKey(practitionerID, date)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, availabilityKey(practitionerID, date), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, errors.Wrap(err, "redis set availability")
	}
}

func (c *AvailabilityRedisCache) Invalidate(ctx context.Context, practitionerID string, dates ...string) error {
	if len(dates) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, d := range dates {
			genKey := generationKey(practitionerID, d)
			p.Incr(ctx, genKey)
			p.Expire(ctx, genKey, generationTTL)
			p.Del(ctx, availabilityKey(practitionerID, d))
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "redis invalidate availability")
	}
	return nil
}

var _ appointment.AvailabilityCache = (*AvailabilityRedisCache)(nil)
