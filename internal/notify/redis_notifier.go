package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultReminderKey = "homekeeper:reminders"
	scheduleKeySuffix  = ":schedule"
)

// RedisNotifier stores reminders in a hash keyed by task id and their next
// fire times in a sorted set, so several processes share one schedule.
type RedisNotifier struct {
	client      *redis.Client
	logger      *zap.Logger
	hashKey     string
	scheduleKey string
	now         func() time.Time
}

func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return NewRedisNotifierWithKey(client, defaultReminderKey, logger)
}

// NewRedisNotifierWithKey uses key for the reminder hash and key+":schedule" for the fire times
func NewRedisNotifierWithKey(client *redis.Client, key string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:      client,
		logger:      logger,
		hashKey:     key,
		scheduleKey: key + scheduleKeySuffix,
		now:         time.Now,
	}
}

func (n *RedisNotifier) RequestAuthorization(ctx context.Context) (bool, error) {
	if err := n.client.Ping(ctx).Err(); err != nil {
		return false, fmt.Errorf("failed to reach reminder store: %w", err)
	}
	return true, nil
}

func (n *RedisNotifier) Schedule(ctx context.Context, reminder Reminder) error {
	next, ok := reminder.Trigger.Next(n.now())
	if !ok {
		n.logger.Debug("Reminder trigger already passed",
			zap.String("task_id", reminder.TaskID.String()),
		)
		return nil
	}
	return n.store(ctx, reminder, next)
}

func (n *RedisNotifier) store(ctx context.Context, reminder Reminder, next time.Time) error {
	payload, err := json.Marshal(reminder)
	if err != nil {
		return fmt.Errorf("failed to encode reminder: %w", err)
	}

	id := reminder.TaskID.String()
	_, err = n.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, n.hashKey, id, payload)
		pipe.ZAdd(ctx, n.scheduleKey, redis.Z{Score: float64(next.Unix()), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder %s: %w", id, err)
	}

	n.logger.Info("Reminder scheduled",
		zap.String("task_id", id),
		zap.Time("next_fire", next),
		zap.Bool("repeats", reminder.Repeats),
	)
	return nil
}

func (n *RedisNotifier) Cancel(ctx context.Context, taskID uuid.UUID) error {
	id := taskID.String()
	_, err := n.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, n.hashKey, id)
		pipe.ZRem(ctx, n.scheduleKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cancel reminder %s: %w", id, err)
	}
	return nil
}

func (n *RedisNotifier) CancelAll(ctx context.Context) error {
	if err := n.client.Del(ctx, n.hashKey, n.scheduleKey).Err(); err != nil {
		return fmt.Errorf("failed to cancel reminders: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Pending(ctx context.Context) ([]Scheduled, error) {
	return n.rangeByScore(ctx, "+inf")
}

func (n *RedisNotifier) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	entries, err := n.rangeByScore(ctx, strconv.FormatInt(now.Unix(), 10))
	if err != nil {
		return nil, err
	}

	due := make([]Reminder, 0, len(entries))
	for _, s := range entries {
		due = append(due, s.Reminder)

		next, ok := s.Trigger.Next(now)
		if s.Repeats && ok {
			if err := n.store(ctx, s.Reminder, next); err != nil {
				return due, err
			}
			continue
		}
		if err := n.Cancel(ctx, s.TaskID); err != nil {
			return due, err
		}
	}
	return due, nil
}

func (n *RedisNotifier) rangeByScore(ctx context.Context, max string) ([]Scheduled, error) {
	zs, err := n.client.ZRangeByScoreWithScores(ctx, n.scheduleKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reminder schedule: %w", err)
	}
	if len(zs) == 0 {
		return []Scheduled{}, nil
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = z.Member.(string)
	}

	payloads, err := n.client.HMGet(ctx, n.hashKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reminders: %w", err)
	}

	out := make([]Scheduled, 0, len(zs))
	for i, raw := range payloads {
		text, ok := raw.(string)
		if !ok {
			n.logger.Warn("Reminder missing from hash", zap.String("task_id", ids[i]))
			continue
		}

		var reminder Reminder
		if err := json.Unmarshal([]byte(text), &reminder); err != nil {
			n.logger.Warn("Skipping unreadable reminder",
				zap.String("task_id", ids[i]),
				zap.Error(err),
			)
			continue
		}

		out = append(out, Scheduled{
			Reminder: reminder,
			NextFire: time.Unix(int64(zs[i].Score), 0).In(reminder.Trigger.Anchor.Location()),
		})
	}
	return out, nil
}
