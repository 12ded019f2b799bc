package statistics_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/umkm-stats-api/internal/application/dto"
	"github.com/jhoicas/umkm-stats-api/internal/application/ports"
	"github.com/jhoicas/umkm-stats-api/internal/application/statistics"
	"github.com/jhoicas/umkm-stats-api/internal/domain"
	"github.com/jhoicas/umkm-stats-api/internal/domain/entity"
	"github.com/jhoicas/umkm-stats-api/pkg/logger"
)

// mapCache caché en memoria mínima con fallos inyectables.
type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	deleted []string
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = payload
	c.ttls[key] = ttl
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, prefix)
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

var _ ports.ResultCache = (*mapCache)(nil)

func newCached(repo *fakeSalesRepo, cache ports.ResultCache) *statistics.CachedStatistics {
	return statistics.NewCachedStatistics(newUseCase(repo), cache, time.Minute, logger.Nop())
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCached_MissThenHit(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	cache := newMapCache()
	svc := newCached(repo, cache)

	first, err := svc.Summary(context.Background(), actorA, march2024)
	require.NoError(t, err)
	assert.False(t, first.Hit)

	second, err := svc.Summary(context.Background(), actorA, march2024)
	require.NoError(t, err)
	assert.True(t, second.Hit)
	assert.Equal(t, first.Body, second.Body, "el hit devuelve los bytes guardados tal cual")
	assert.Equal(t, 1, repo.callCount())

	var out dto.SummaryDTO
	require.NoError(t, json.Unmarshal(second.Body, &out))
	assert.True(t, out.Totals.Revenue.Equal(dec("400")))

	for _, ttl := range cache.ttls {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestCached_KeyDependsOnActorOperationAndParams(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	cache := newMapCache()
	svc := newCached(repo, cache)
	ctx := context.Background()

	_, err := svc.Summary(ctx, actorA, march2024)
	require.NoError(t, err)
	_, err = svc.Summary(ctx, actorB, march2024)
	require.NoError(t, err)
	_, err = svc.Products(ctx, actorA, march2024)
	require.NoError(t, err)
	q := march2024
	q.Month = 2
	_, err = svc.Summary(ctx, actorA, q)
	require.NoError(t, err)

	assert.Equal(t, 4, repo.callCount())
	assert.Equal(t, 4, cache.size())
}

func TestCacheKey(t *testing.T) {
	params := map[string]string{"year": "2024", "month": "3", "location_id": ""}
	reordered := map[string]string{"month": "3", "year": "2024"}

	k1 := statistics.CacheKey(actorA, statistics.OpSummary, params)
	k2 := statistics.CacheKey(actorA, statistics.OpSummary, reordered)
	assert.Equal(t, k1, k2, "orden y parámetros vacíos no afectan la clave")
	assert.True(t, strings.HasPrefix(k1, statistics.SellerPrefix(sellerA)))
	assert.Len(t, strings.TrimPrefix(k1, statistics.SellerPrefix(sellerA)), 64, "sha256 en hex")

	admin := statistics.CacheKey(actorAdmin, statistics.OpSummary, params)
	assert.True(t, strings.HasPrefix(admin, "stats:admin:"+adminID+":"))

	assert.NotEqual(t, k1, statistics.CacheKey(actorA, statistics.OpProducts, params))
}

func TestCached_ForbiddenNeverTouchesCache(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	cache := newMapCache()
	cache.getErr = errors.New("no debería llamarse")
	svc := newCached(repo, cache)

	_, err := svc.Summary(context.Background(), entity.Actor{UserID: sellerA, Role: "guest"}, march2024)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, cache.size())
	assert.Zero(t, repo.callCount())
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	cache := newMapCache()
	svc := newCached(repo, cache)

	_, err := svc.Summary(context.Background(), actorA, dto.StatisticsQuery{PeriodType: "custom", StartDate: "2024-03-05", EndDate: "2024-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
	assert.Zero(t, cache.size())
}

func TestCached_CacheFailuresAreBypassed(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	cache := newMapCache()
	cache.getErr = errors.New("redis caído")
	cache.setErr = errors.New("redis caído")
	svc := newCached(repo, cache)

	res, err := svc.Locations(context.Background(), actorA, march2024)
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.NotEmpty(t, res.Body)

	_, err = svc.Locations(context.Background(), actorA, march2024)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.callCount(), "sin caché cada petición consulta el repositorio")
}

func TestCached_DisabledCache(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	svc := newCached(repo, nil)

	for i := 0; i < 2; i++ {
		res, err := svc.Periods(context.Background(), actorAdmin, march2024)
		require.NoError(t, err)
		assert.False(t, res.Hit)
	}
	assert.Equal(t, 2, repo.callCount())
}

func TestCached_ConcurrentMissesAreCoalesced(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario(), block: make(chan struct{})}
	svc := newCached(repo, newMapCache())

	const n = 8
	var wg sync.WaitGroup
	results := make([]statistics.Result, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Summary(context.Background(), actorA, march2024)
		}(i)
	}

	require.Eventually(t, func() bool { return repo.callCount() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(repo.block)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Body, results[i].Body)
	}
	assert.LessOrEqual(t, repo.callCount(), n)
	assert.GreaterOrEqual(t, repo.callCount(), 1)
}

func TestCached_CanceledLeaderDoesNotFailFollowers(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario(), block: make(chan struct{})}
	cache := newMapCache()
	svc := newCached(repo, cache)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.Summary(leaderCtx, actorA, march2024)
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return repo.callCount() >= 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		res statistics.Result
		err error
	}
	follower := make(chan outcome, 1)
	go func() {
		res, err := svc.Summary(context.Background(), actorA, march2024)
		follower <- outcome{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-leaderErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("el líder cancelado no retornó")
	}

	close(repo.block)
	var got outcome
	select {
	case got = <-follower:
	case <-time.After(time.Second):
		t.Fatal("el seguidor no retornó")
	}
	require.NoError(t, got.err)

	var out dto.SummaryDTO
	require.NoError(t, json.Unmarshal(got.res.Body, &out))
	assert.True(t, out.Totals.Revenue.Equal(dec("400")))
	assert.Equal(t, 1, cache.size(), "el resultado del cálculo compartido se guarda")
}

func TestCached_AllOperations(t *testing.T) {
	repo := &fakeSalesRepo{lines: marchScenario()}
	uc := newUseCase(repo, fixedClock(time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)))
	svc := statistics.NewCachedStatistics(uc, newMapCache(), 0, logger.Nop())
	ctx := context.Background()
	chart := dto.ChartQuery{Year: 2024}

	calls := []func() (statistics.Result, error){
		func() (statistics.Result, error) { return svc.Dashboard(ctx, actorA, "id") },
		func() (statistics.Result, error) { return svc.SalesChart(ctx, actorA, chart) },
		func() (statistics.Result, error) { return svc.SellerChart(ctx, actorA, chart) },
		func() (statistics.Result, error) { return svc.ChartSummary(ctx, actorA, chart) },
	}
	for _, call := range calls {
		miss, err := call()
		require.NoError(t, err)
		assert.False(t, miss.Hit)
		hit, err := call()
		require.NoError(t, err)
		assert.True(t, hit.Hit)
		assert.JSONEq(t, string(miss.Body), string(hit.Body))
	}
}
