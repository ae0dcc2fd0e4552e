package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/infrastructure/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── LocalLocker ────────────────────────────────────────────────────────────

func TestLocalLocker_SegundaCorridaRechazada(t *testing.T) {
	ctx := context.Background()
	l := lock.NewLocalLocker()

	first, err := l.Obtain(ctx, "sync:proveedor")
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "sync:proveedor")
	assert.ErrorIs(t, err, domain.ErrLockNotObtained, "la clave tomada debe rechazar otra corrida")

	other, err := l.Obtain(ctx, "sync:otro")
	require.NoError(t, err, "otra clave es independiente")
	require.NoError(t, other.Release(ctx))

	require.NoError(t, first.Release(ctx))
	again, err := l.Obtain(ctx, "sync:proveedor")
	require.NoError(t, err, "tras liberar se puede volver a tomar")
	require.NoError(t, again.Release(ctx))
}

func TestLocalLocker_ReleaseIdempotente(t *testing.T) {
	ctx := context.Background()
	l := lock.NewLocalLocker()
	r, err := l.Obtain(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, r.Release(ctx))
	require.NoError(t, r.Release(ctx), "liberar dos veces no debe entrar en pánico")
}

// ─── KeyedMutex ─────────────────────────────────────────────────────────────

func TestKeyedMutex_SerializaPorClave(t *testing.T) {
	k := lock.NewKeyedMutex()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("payer:u1")
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside, "nunca debe haber dos dueños de la misma clave")
}

func TestKeyedMutex_TryLock(t *testing.T) {
	k := lock.NewKeyedMutex()
	unlock, ok := k.TryLock("a")
	require.True(t, ok)

	_, ok = k.TryLock("a")
	assert.False(t, ok)

	unlockB, ok := k.TryLock("b")
	assert.True(t, ok)
	unlockB()

	unlock()
	unlock2, ok := k.TryLock("a")
	assert.True(t, ok)
	unlock2()
}
