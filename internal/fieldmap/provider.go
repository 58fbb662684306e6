// Package fieldmap resolves the per-company CRM markers that classify a
// lead's integration_status. Rows come from Postgres, are cached in Redis and
// fall back to built-in defaults per integration type.
package fieldmap

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const (
	keyPrefix  = "crm:fieldmap:"
	defaultTTL = 10 * time.Minute
)

// Store reads company field maps.
type Store interface {
	GetFieldMap(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType, objectType string) (domain.FieldMap, error)
}

// Provider implements ports.FieldMapProvider.
type Provider struct {
	store    Store
	rdb      *redis.Client
	ttl      time.Duration
	defaults map[domain.IntegrationType]domain.FieldMap
	group    singleflight.Group
	log      *logger.Logger
}

// NewProvider creates a provider. rdb may be nil to disable caching.
func NewProvider(store Store, rdb *redis.Client, ttl time.Duration, log *logger.Logger) (*Provider, error) {
	defaults, err := LoadDefaults(defaultsYAML)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Provider{store: store, rdb: rdb, ttl: ttl, defaults: defaults, log: log}, nil
}

// LoadDefaults parses a YAML document keyed by integration type.
func LoadDefaults(raw []byte) (map[domain.IntegrationType]domain.FieldMap, error) {
	var parsed map[string]domain.FieldMap
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse field map defaults: %w", err)
	}
	out := make(map[domain.IntegrationType]domain.FieldMap, len(parsed))
	for name, fm := range parsed {
		it, ok := domain.ParseIntegrationType(name)
		if !ok {
			return nil, fmt.Errorf("field map defaults: unknown integration type %q", name)
		}
		out[it] = fm
	}
	return out, nil
}

// GetFieldMap returns the markers of the company for it. Redis failures are
// logged and bypassed; only a store failure is returned.
func (p *Provider) GetFieldMap(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType) (domain.FieldMap, error) {
	key := cacheKey(companyID, it)
	if fm, ok := p.cached(ctx, key); ok {
		return fm, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		fm, err := p.load(ctx, companyID, it)
		if err != nil {
			return domain.FieldMap{}, err
		}
		p.writeCache(ctx, key, fm)
		return fm, nil
	})
	if err != nil {
		return domain.FieldMap{}, err
	}
	return v.(domain.FieldMap), nil
}

// Invalidate drops the cached markers of a company, e.g. after an admin edit.
func (p *Provider) Invalidate(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType) error {
	if p.rdb == nil {
		return nil
	}
	return p.rdb.Del(ctx, cacheKey(companyID, it)).Err()
}

func (p *Provider) load(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType) (domain.FieldMap, error) {
	fm, err := p.store.GetFieldMap(ctx, companyID, it, it.ObjectType())
	if errors.Is(err, repository.ErrNotFound) {
		return p.defaults[it], nil
	}
	return fm, err
}

func (p *Provider) cached(ctx context.Context, key string) (domain.FieldMap, bool) {
	if p.rdb == nil {
		return domain.FieldMap{}, false
	}
	raw, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.log.WithContext(ctx).Warn("field map cache read failed", "key", key, "error", err)
		}
		return domain.FieldMap{}, false
	}
	var fm domain.FieldMap
	if err := json.Unmarshal(raw, &fm); err != nil {
		return domain.FieldMap{}, false
	}
	return fm, true
}

func (p *Provider) writeCache(ctx context.Context, key string, fm domain.FieldMap) {
	if p.rdb == nil {
		return
	}
	raw, err := json.Marshal(fm)
	if err != nil {
		return
	}
	if err := p.rdb.Set(ctx, key, raw, p.ttl).Err(); err != nil {
		p.log.WithContext(ctx).Warn("field map cache write failed", "key", key, "error", err)
	}
}

func cacheKey(companyID uuid.UUID, it domain.IntegrationType) string {
	return keyPrefix + companyID.String() + ":" + string(it)
}
