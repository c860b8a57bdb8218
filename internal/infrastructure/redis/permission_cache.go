package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// PermissionTTL vigencia de las claves de permiso cacheadas por rol.
const PermissionTTL = 5 * time.Minute

var _ repository.PermissionCache = (*PermissionCache)(nil)

// PermissionCache guarda las claves "recurso:accion" de cada rol como JSON en perm:rol:<id>.
type PermissionCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewPermissionCache construye la caché sobre un cliente ya conectado.
func NewPermissionCache(client *goredis.Client) *PermissionCache {
	return &PermissionCache{client: client, ttl: PermissionTTL}
}

func permissionKey(roleID string) string {
	return "perm:rol:" + roleID
}

// Get devuelve ok=false en un miss. Un rol sin permisos se guarda como "[]" y es un hit.
func (c *PermissionCache) Get(ctx context.Context, roleID string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, permissionKey(roleID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get permisos: %w", err)
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, false, fmt.Errorf("decodificar permisos cacheados: %w", err)
	}
	return keys, true, nil
}

func (c *PermissionCache) Set(ctx context.Context, roleID string, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, permissionKey(roleID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set permisos: %w", err)
	}
	return nil
}

func (c *PermissionCache) Invalidate(ctx context.Context, roleID string) error {
	if err := c.client.Del(ctx, permissionKey(roleID)).Err(); err != nil {
		return fmt.Errorf("redis del permisos: %w", err)
	}
	return nil
}
