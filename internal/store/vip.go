package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const vipIndexKey = "vip:active"

func vipKey(userID string) string {
	return "vip:user:" + userID
}

// VIPStatus is a user's subscription record.
type VIPStatus struct {
	Active  bool
	StartAt time.Time
	EndAt   time.Time
}

// SetVIP marks a user as VIP until end and indexes the record for the
// expiry sweep.
func (s *Store) SetVIP(ctx context.Context, userID string, start, end time.Time) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, vipKey(userID),
		"isVIP", 1,
		"vipSubscriptionStartDate", start.UnixMilli(),
		"vipSubscriptionEndDate", end.UnixMilli(),
	)
	pipe.SAdd(ctx, vipIndexKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set vip: %w", err)
	}
	return nil
}

// VIP reads a user's subscription record.
func (s *Store) VIP(ctx context.Context, userID string) (VIPStatus, error) {
	vals, err := s.client.HGetAll(ctx, vipKey(userID)).Result()
	if err != nil {
		return VIPStatus{}, fmt.Errorf("read vip: %w", err)
	}
	var st VIPStatus
	st.Active = vals["isVIP"] == "1"
	if ms, err := strconv.ParseInt(vals["vipSubscriptionStartDate"], 10, 64); err == nil {
		st.StartAt = time.UnixMilli(ms)
	}
	if ms, err := strconv.ParseInt(vals["vipSubscriptionEndDate"], 10, 64); err == nil {
		st.EndAt = time.UnixMilli(ms)
	}
	return st, nil
}

// ExpireVIPs sweeps the index and downgrades every record whose end date
// has passed. Returns the number of users downgraded. Run daily; safe to
// run at any time.
func (s *Store) ExpireVIPs(ctx context.Context) (int, error) {
	ids, err := s.client.SMembers(ctx, vipIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("read vip index: %w", err)
	}

	now := s.now()
	expired := 0
	for _, id := range ids {
		endStr, err := s.client.HGet(ctx, vipKey(id), "vipSubscriptionEndDate").Result()
		if err == redis.Nil {
			// Dangling index entry; drop it.
			s.client.SRem(ctx, vipIndexKey, id)
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("module", "store.vip").Str("user", id).Msg("read end date")
			continue
		}
		endMs, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || time.UnixMilli(endMs).After(now) {
			continue
		}

		pipe := s.client.TxPipeline()
		pipe.HSet(ctx, vipKey(id), "isVIP", 0)
		pipe.HDel(ctx, vipKey(id), "vipSubscriptionStartDate", "vipSubscriptionEndDate")
		pipe.SRem(ctx, vipIndexKey, id)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Error().Err(err).Str("module", "store.vip").Str("user", id).Msg("downgrade failed")
			continue
		}
		expired++
		log.Info().Str("module", "store.vip").Str("user", id).Msg("vip expired")
	}
	return expired, nil
}
