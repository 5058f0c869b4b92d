package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/entities"
)

const (
	applicationKeyPrefix = "visa_app:"
	applicationIndexKey  = "visa_app:index"
)

// VisaApplicationRedisStore keeps each application as a JSON blob under
// visa_app:<id> plus a sorted-set index ordered by creation time.
type VisaApplicationRedisStore struct {
	client *redis.Client
}

func NewVisaApplicationRedisStore(client *redis.Client) *VisaApplicationRedisStore {
	return &VisaApplicationRedisStore{client: client}
}

func applicationKey(id string) string {
	return applicationKeyPrefix + id
}

func (s *VisaApplicationRedisStore) Create(ctx context.Context, app *entities.VisaApplication) error {
	payload, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to encode application %s: %w", app.ID, err)
	}

	created, err := s.client.SetNX(ctx, applicationKey(app.ID), payload, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("application %s already exists", app.ID)
	}

	return s.client.ZAdd(ctx, applicationIndexKey, redis.Z{
		Score:  float64(app.CreatedAt.UnixMilli()),
		Member: app.ID,
	}).Err()
}

func (s *VisaApplicationRedisStore) Get(ctx context.Context, id string) (*entities.VisaApplication, error) {
	raw, err := s.client.Get(ctx, applicationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}

	var app entities.VisaApplication
	if err := json.Unmarshal(raw, &app); err != nil {
		return nil, fmt.Errorf("failed to decode application %s: %w", id, err)
	}
	return &app, nil
}

func (s *VisaApplicationRedisStore) all(ctx context.Context) ([]entities.VisaApplication, error) {
	ids, err := s.client.ZRevRange(ctx, applicationIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []entities.VisaApplication{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = applicationKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	apps := make([]entities.VisaApplication, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// index entry without a record
			continue
		}
		var app entities.VisaApplication
		if err := json.Unmarshal([]byte(str), &app); err != nil {
			return nil, fmt.Errorf("failed to decode application %s: %w", ids[i], err)
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (s *VisaApplicationRedisStore) List(ctx context.Context, status constants.ApplicationStatus) ([]entities.VisaApplication, error) {
	apps, err := s.all(ctx)
	if err != nil || status == "" {
		return apps, err
	}

	filtered := make([]entities.VisaApplication, 0, len(apps))
	for _, app := range apps {
		if app.Status == status {
			filtered = append(filtered, app)
		}
	}
	return filtered, nil
}

// Update overwrites an existing record; the last writer wins.
func (s *VisaApplicationRedisStore) Update(ctx context.Context, app *entities.VisaApplication) error {
	payload, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to encode application %s: %w", app.ID, err)
	}

	updated, err := s.client.SetXX(ctx, applicationKey(app.ID), payload, 0).Result()
	if err != nil {
		return err
	}
	if !updated {
		return common.ErrApplicationNotFound
	}
	return nil
}

func (s *VisaApplicationRedisStore) CountByStatus(ctx context.Context) (map[constants.ApplicationStatus]int, error) {
	apps, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[constants.ApplicationStatus]int)
	for _, app := range apps {
		counts[app.Status]++
	}
	return counts, nil
}

func (s *VisaApplicationRedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
