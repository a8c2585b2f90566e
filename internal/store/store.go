// Package store is the external document store: user reports, chat
// ratings and VIP subscription records, kept in Redis. Writes here are
// fire-and-forget from the caller's point of view and never gate the
// real-time flow.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veloji/blink/internal/domain"
)

const (
	reportsKey = "reports"
	ratingsKey = "ratings"
)

// Report is a stored user report.
type Report struct {
	ReportedUserID domain.UserID `json:"reportedUserId"`
	ReportedBy     domain.UserID `json:"reportedBy"`
	Reason         string        `json:"reason"`
	Timestamp      time.Time     `json:"timestamp"`
}

// Rating is a stored chat rating tag.
type Rating struct {
	RatedUserID domain.UserID `json:"ratedUserId"`
	RatedBy     domain.UserID `json:"ratedBy"`
	Tag         string        `json:"tag"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Store wraps the Redis client. The clock is injectable so tests can pin
// the server timestamp.
type Store struct {
	client redis.Cmdable
	now    func() time.Time
}

func New(client redis.Cmdable) *Store {
	return &Store{client: client, now: time.Now}
}

// AddReport appends a report with a server-side timestamp.
func (s *Store) AddReport(ctx context.Context, reportedBy, reported domain.UserID, reason string) error {
	r := Report{
		ReportedUserID: reported,
		ReportedBy:     reportedBy,
		Reason:         reason,
		Timestamp:      s.now(),
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := s.client.RPush(ctx, reportsKey, data).Err(); err != nil {
		return fmt.Errorf("push report: %w", err)
	}
	return nil
}

// AddRating appends a rating with a server-side timestamp.
func (s *Store) AddRating(ctx context.Context, ratedBy, rated domain.UserID, tag string) error {
	r := Rating{
		RatedUserID: rated,
		RatedBy:     ratedBy,
		Tag:         tag,
		Timestamp:   s.now(),
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}
	if err := s.client.RPush(ctx, ratingsKey, data).Err(); err != nil {
		return fmt.Errorf("push rating: %w", err)
	}
	return nil
}

// Reports returns all stored reports, oldest first.
func (s *Store) Reports(ctx context.Context) ([]Report, error) {
	vals, err := s.client.LRange(ctx, reportsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}
	out := make([]Report, 0, len(vals))
	for _, v := range vals {
		var r Report
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Ratings returns all stored ratings, oldest first.
func (s *Store) Ratings(ctx context.Context) ([]Rating, error) {
	vals, err := s.client.LRange(ctx, ratingsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}
	out := make([]Rating, 0, len(vals))
	for _, v := range vals {
		var r Rating
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
