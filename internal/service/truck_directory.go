package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetmate/loan-ledger/internal/domain"
	"github.com/fleetmate/loan-ledger/internal/repository"
)

// TruckDirectory resolves truck metadata through a Redis read-through cache
// so user-scope ledger queries do not hit the trucks table once per row.
// Cache failures are logged and degrade to a direct store read.
type TruckDirectory struct {
	trucks repository.TruckRepository
	redis  *redis.Client
	ttl    time.Duration
}

func NewTruckDirectory(trucks repository.TruckRepository, redisClient *redis.Client, ttl time.Duration) *TruckDirectory {
	return &TruckDirectory{
		trucks: trucks,
		redis:  redisClient,
		ttl:    ttl,
	}
}

func truckCacheKey(id string) string {
	return "truck:" + id
}

// GetByID returns the truck with the given ID, from cache when possible.
func (d *TruckDirectory) GetByID(ctx context.Context, id string) (*domain.Truck, error) {
	if d.redis != nil {
		raw, err := d.redis.Get(ctx, truckCacheKey(id)).Bytes()
		switch {
		case err == nil:
			var truck domain.Truck
			if err := json.Unmarshal(raw, &truck); err == nil {
				return &truck, nil
			}
			// Unreadable entry, fall through to the store
		case !errors.Is(err, redis.Nil):
			log.Printf("truck cache read failed for %s: %v", id, err)
		}
	}

	truck, err := d.trucks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d.cache(ctx, truck)
	return truck, nil
}

// Warm preloads every financed truck into the cache and returns them.
func (d *TruckDirectory) Warm(ctx context.Context) ([]*domain.Truck, error) {
	trucks, err := d.trucks.ListFinanced(ctx)
	if err != nil {
		return nil, err
	}

	for _, truck := range trucks {
		d.cache(ctx, truck)
	}

	return trucks, nil
}

func (d *TruckDirectory) cache(ctx context.Context, truck *domain.Truck) {
	if d.redis == nil || truck == nil {
		return
	}

	raw, err := json.Marshal(truck)
	if err != nil {
		return
	}
	if err := d.redis.Set(ctx, truckCacheKey(truck.ID), raw, d.ttl).Err(); err != nil {
		log.Printf("truck cache write failed for %s: %v", truck.ID, err)
	}
}
