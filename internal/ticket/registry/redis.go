package registry

import (
	"context"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/gatejohn/internal/security/secretbox"
	"github.com/dropDatabas3/gatejohn/internal/ticket"
)

// Redis implementa Registry sobre redis para despliegues multi-nodo.
//
// El payload JSON se sella con secretbox antes de salir del proceso: los
// tickets contienen atributos del principal y el backend compartido no
// tiene por qué verlos en claro.
type Redis struct {
	client *rdb.Client
	prefix string

	// EvictAfter acota la vida de la key en redis. Igual que en Memory,
	// debe superar el TTL de política más largo.
	evictAfter time.Duration

	// Sealed desactivable para entornos de test sin clave maestra.
	sealed bool
}

// NewRedis crea un registry respaldado por redis.
func NewRedis(client *rdb.Client, prefix string, evictAfter time.Duration, sealed bool) *Redis {
	if prefix == "" {
		prefix = "gj:ticket:"
	}
	return &Redis{client: client, prefix: prefix, evictAfter: evictAfter, sealed: sealed}
}

func (r *Redis) key(id string) string { return r.prefix + id }

func (r *Redis) encode(t ticket.Ticket) (string, error) {
	raw, err := Encode(t)
	if err != nil {
		return "", err
	}
	if !r.sealed {
		return string(raw), nil
	}
	return secretbox.Encrypt(string(raw))
}

func (r *Redis) decode(payload string) (ticket.Ticket, error) {
	if r.sealed {
		pt, err := secretbox.Decrypt(payload)
		if err != nil {
			return nil, fmt.Errorf("registry: unseal ticket: %w", err)
		}
		payload = pt
	}
	return Decode([]byte(payload))
}

func (r *Redis) Put(ctx context.Context, t ticket.Ticket) error {
	payload, err := r.encode(t)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(t.ID()), payload, r.evictAfter).Err()
}

func (r *Redis) Get(ctx context.Context, id string) (ticket.Ticket, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Result()
	if err == rdb.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.decode(payload)
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// Update lee, muta y reescribe el ticket. La serialización por id la da el
// contrato del core (un solo mutador concurrente por ticket); no se usa
// WATCH porque el caller ya garantiza exclusión.
func (r *Redis) Update(ctx context.Context, id string, fn Mutator) (ticket.Ticket, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := r.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
