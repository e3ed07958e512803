package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"loan-workout/domain"
)

// OptionRepositoryRedis keeps one hash per resolution (field = option id,
// value = option JSON) and the persisting data as a plain JSON string.
type OptionRepositoryRedis struct {
	client *redis.Client
}

func NewOptionRepositoryRedis(client *redis.Client) *OptionRepositoryRedis {
	return &OptionRepositoryRedis{client: client}
}

func optionsKey(resolutionID string) string {
	return "workout:" + resolutionID + ":options"
}

func persistingKey(resolutionID string) string {
	return "workout:" + resolutionID + ":persisting"
}

func (r *OptionRepositoryRedis) List(ctx context.Context, resolutionID string) ([]domain.Option, error) {
	fields, err := r.client.HGetAll(ctx, optionsKey(resolutionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	options := make([]domain.Option, 0, len(fields))
	for field, raw := range fields {
		var opt domain.Option
		if err := json.Unmarshal([]byte(raw), &opt); err != nil {
			return nil, fmt.Errorf("failed to decode option %s: %w", field, err)
		}
		options = append(options, opt)
	}
	sort.Slice(options, func(i, j int) bool { return options[i].ID < options[j].ID })
	return options, nil
}

func (r *OptionRepositoryRedis) Save(ctx context.Context, resolutionID string, option domain.Option) error {
	raw, err := json.Marshal(option)
	if err != nil {
		return fmt.Errorf("failed to encode option: %w", err)
	}
	if err := r.client.HSet(ctx, optionsKey(resolutionID), strconv.Itoa(option.ID), raw).Err(); err != nil {
		return fmt.Errorf("failed to save option: %w", err)
	}
	return nil
}

func (r *OptionRepositoryRedis) Replace(ctx context.Context, resolutionID string, options []domain.Option) error {
	values := make([]any, 0, 2*len(options))
	for _, opt := range options {
		raw, err := json.Marshal(opt)
		if err != nil {
			return fmt.Errorf("failed to encode option: %w", err)
		}
		values = append(values, strconv.Itoa(opt.ID), raw)
	}
	key := optionsKey(resolutionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace options: %w", err)
	}
	return nil
}

func (r *OptionRepositoryRedis) SavePersistingData(ctx context.Context, resolutionID string, data domain.PersistingData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode persisting data: %w", err)
	}
	if err := r.client.Set(ctx, persistingKey(resolutionID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save persisting data: %w", err)
	}
	return nil
}

func (r *OptionRepositoryRedis) PersistingData(ctx context.Context, resolutionID string) (domain.PersistingData, error) {
	var data domain.PersistingData
	raw, err := r.client.Get(ctx, persistingKey(resolutionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return data, ErrNotFound
	}
	if err != nil {
		return data, fmt.Errorf("failed to load persisting data: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("failed to decode persisting data: %w", err)
	}
	return data, nil
}
