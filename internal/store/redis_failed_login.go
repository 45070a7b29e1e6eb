package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/models"
)

const failedLoginKeyPrefix = "failed_login:"

// ErrRedisUnavailable is returned when the Redis counter store cannot be
// reached at startup.
var ErrRedisUnavailable = errors.New("redis is unavailable")

// NewRedisClient connects to the Redis server described by cfg and checks
// the connection.
func NewRedisClient(ctx context.Context, cfg config.Redis, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Err(err).Str("func", "NewRedisClient").Msg("error connecting redis (ping)")
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	log.Info().Str("func", "NewRedisClient").Msg("connected to redis successfully")

	return client, nil
}

// redisFailedLoginRepository keeps failure counters in Redis hashes so
// several portal instances share one lockout state. Records are not part of
// any unit of work.
type redisFailedLoginRepository struct {
	client redis.UniversalClient
}

// NewRedisFailedLoginRepository constructs a [FailedLoginRepository] over
// client.
func NewRedisFailedLoginRepository(client redis.UniversalClient) FailedLoginRepository {
	return &redisFailedLoginRepository{client: client}
}

func failedLoginKey(ip string) string {
	return failedLoginKeyPrefix + ip
}

// Increment bumps the counter and the last attempt time in one MULTI block.
func (r *redisFailedLoginRepository) Increment(ctx context.Context, ip string, at time.Time) (models.FailedLogin, error) {
	key := failedLoginKey(ip)

	var attempts *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		attempts = pipe.HIncrBy(ctx, key, "attempts", 1)
		pipe.HSet(ctx, key, "last_attempt", at.UnixNano())
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*redisFailedLoginRepository.Increment").Msg("error recording failed login")
		return models.FailedLogin{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return models.FailedLogin{
		IPAddress:   ip,
		Attempts:    int(attempts.Val()),
		LastAttempt: at,
	}, nil
}

// Find returns the record for ip or [ErrFailedLoginNotFound].
func (r *redisFailedLoginRepository) Find(ctx context.Context, ip string) (models.FailedLogin, error) {
	values, err := r.client.HGetAll(ctx, failedLoginKey(ip)).Result()
	if err != nil {
		return models.FailedLogin{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if len(values) == 0 {
		return models.FailedLogin{}, ErrFailedLoginNotFound
	}

	attempts, err := strconv.Atoi(values["attempts"])
	if err != nil {
		return models.FailedLogin{}, fmt.Errorf("%w: attempts: %w", ErrScanningRow, err)
	}
	lastAttempt, err := strconv.ParseInt(values["last_attempt"], 10, 64)
	if err != nil {
		return models.FailedLogin{}, fmt.Errorf("%w: last_attempt: %w", ErrScanningRow, err)
	}

	return models.FailedLogin{
		IPAddress:   ip,
		Attempts:    attempts,
		LastAttempt: time.Unix(0, lastAttempt),
	}, nil
}

// Delete removes the record for ip.
func (r *redisFailedLoginRepository) Delete(ctx context.Context, ip string) error {
	if err := r.client.Del(ctx, failedLoginKey(ip)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// List scans the counter keys and loads each record. Keys that expire
// between the scan and the read are skipped.
func (r *redisFailedLoginRepository) List(ctx context.Context) ([]models.FailedLogin, error) {
	records := make([]models.FailedLogin, 0)

	iter := r.client.Scan(ctx, 0, failedLoginKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		record, err := r.Find(ctx, strings.TrimPrefix(iter.Val(), failedLoginKeyPrefix))
		if errors.Is(err, ErrFailedLoginNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*redisFailedLoginRepository.List").Msg("error scanning failed logins")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	slices.SortFunc(records, func(a, b models.FailedLogin) int {
		return b.LastAttempt.Compare(a.LastAttempt)
	})

	return records, nil
}
