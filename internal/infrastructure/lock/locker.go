// Package lock bloqueos exclusivos por clave: distribuidos sobre Redis (bsm/redislock)
// o en proceso cuando no hay Redis configurado.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/sanse-api/internal/application/pricesync"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	_ pricesync.Locker = (*RedisLocker)(nil)
	_ pricesync.Locker = (*LocalLocker)(nil)
)

// RedisLocker bloqueo distribuido con TTL. Mientras está tomado se renueva cada TTL/2;
// si el proceso muere el bloqueo expira solo.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	prefix string
}

// NewRedisLocker construye el locker sobre un cliente go-redis.
func NewRedisLocker(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, prefix: prefix}
}

// Obtain intenta una sola vez; si la clave está tomada devuelve domain.ErrLockNotObtained.
func (l *RedisLocker) Obtain(ctx context.Context, key string) (pricesync.Releaser, error) {
	lk, err := l.client.Obtain(ctx, l.prefix+key, l.ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, domain.ErrLockNotObtained
		}
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	hb := startHeartbeat(l.ttl/2, func(ctx context.Context) bool {
		err := lk.Refresh(ctx, l.ttl, nil)
		return !errors.Is(err, redislock.ErrNotObtained)
	})
	return &redisRelease{lock: lk, hb: hb}, nil
}

type redisRelease struct {
	lock *redislock.Lock
	hb   *heartbeat
}

// Release detiene la renovación y libera el bloqueo. Si ya expiró no es error.
func (r *redisRelease) Release(ctx context.Context) error {
	r.hb.Stop()
	if err := r.lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return err
	}
	return nil
}

func (r *redisRelease) Lost() <-chan struct{} { return r.hb.Lost() }

// heartbeat renueva un bloqueo cada interval hasta Stop. refresh devuelve false cuando el
// bloqueo ya no es nuestro; en ese caso se cierra Lost y se deja de renovar.
// Un error transitorio no cuenta como pérdida: se reintenta en el siguiente tick.
type heartbeat struct {
	stop chan struct{}
	lost chan struct{}
	done chan struct{}
	once sync.Once
}

func startHeartbeat(interval time.Duration, refresh func(context.Context) bool) *heartbeat {
	h := &heartbeat{stop: make(chan struct{}), lost: make(chan struct{}), done: make(chan struct{})}
	if interval <= 0 {
		close(h.done)
		return h
	}
	go func() {
		defer close(h.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-t.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				held := refresh(ctx)
				cancel()
				if !held {
					close(h.lost)
					return
				}
			}
		}
	}()
	return h
}

// Stop detiene la renovación y espera a que termine. Idempotente.
func (h *heartbeat) Stop() {
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

func (h *heartbeat) Lost() <-chan struct{} { return h.lost }

// LocalLocker bloqueo en proceso; sirve con una sola instancia del servicio.
type LocalLocker struct {
	keys *KeyedMutex
}

// NewLocalLocker construye el locker en proceso.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: NewKeyedMutex()}
}

// Obtain toma la clave si está libre; nunca espera.
func (l *LocalLocker) Obtain(_ context.Context, key string) (pricesync.Releaser, error) {
	unlock, ok := l.keys.TryLock(key)
	if !ok {
		return nil, domain.ErrLockNotObtained
	}
	return localRelease(unlock), nil
}

type localRelease func()

func (r localRelease) Release(context.Context) error {
	r()
	return nil
}

// Lost nunca se cierra: el bloqueo en proceso no expira.
func (localRelease) Lost() <-chan struct{} { return nil }

// NewRedisClient abre un cliente go-redis desde una URL redis:// y verifica la conexión.
func NewRedisClient(ctx context.Context, url string, log zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("redis conectado")
	return rdb, nil
}
