package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optbazar/optbazar/internal/platform/cache"
	"github.com/optbazar/optbazar/internal/shared"
)

type memoryRepository struct {
	mu        sync.Mutex
	items     map[string]Product
	listCalls int
	countErr  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: map[string]Product{}}
}

func (m *memoryRepository) List(ctx context.Context, filter Filter) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	out := make([]Product, 0, len(m.items))
	for _, p := range m.items {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepository) Get(ctx context.Context, id string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepository) Create(ctx context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[p.ID] = p
	return nil
}

func (m *memoryRepository) Update(ctx context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return shared.ErrNotFound
	}
	m.items[p.ID] = p
	return nil
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.items)), nil
}

func validInput() Input {
	return Input{
		Name:              "Огурцы",
		Category:          CategoryVegetables,
		Price:             decimal.NewFromInt(50),
		MinOrderIncrement: decimal.NewFromInt(10),
	}
}

func TestCreateValidatesInvariants(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		mod   func(*Input)
		field string
	}{
		{"negative price", func(in *Input) { in.Price = decimal.NewFromInt(-1) }, "price"},
		{"zero increment", func(in *Input) { in.MinOrderIncrement = decimal.Zero }, "minOrder"},
		{"negative increment", func(in *Input) { in.MinOrderIncrement = decimal.NewFromInt(-5) }, "minOrder"},
		{"blank name", func(in *Input) { in.Name = "  " }, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mod(&in)
			_, err := svc.Create(ctx, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Equal(t, tc.field, shared.FieldOf(err))
		})
	}

	t.Run("zero price allowed", func(t *testing.T) {
		in := validInput()
		in.Price = decimal.Zero
		_, err := svc.Create(ctx, in)
		assert.NoError(t, err)
	})
}

func TestCreateReadDeleteRoundTrip(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	in := validInput()
	in.Unit = ""
	in.ShelfLife = "7 дней"
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, DefaultUnit, created.Unit)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), shared.ErrNotFound)
}

func TestCreateKeepsFineScaleAmounts(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil, nil)
	ctx := context.Background()

	in := validInput()
	in.Price = decimal.RequireFromString("12.345")
	in.MinOrderIncrement = decimal.RequireFromString("0.0001")
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.345", fetched.Price.String())
	assert.Equal(t, "0.0001", fetched.MinOrderIncrement.String())
}

func TestUpdateKeepsIdentity(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Price = decimal.NewFromInt(55)
	updated, err := svc.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(55)))

	bad := validInput()
	bad.MinOrderIncrement = decimal.Zero
	_, err = svc.Update(ctx, created.ID, bad)
	assert.ErrorIs(t, err, shared.ErrValidation)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.MinOrderIncrement.Equal(decimal.NewFromInt(10)))

	_, err = svc.Update(ctx, "00000000-0000-0000-0000-000000000000", validInput())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetRejectsMalformedID(t *testing.T) {
	svc := NewService(newMemoryRepository(), nil, nil)
	_, err := svc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListCacheInvalidatedOnMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepository()
	svc := NewService(repo, cache.NewVersioned(client, "catalog", time.Minute), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	first, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	second, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls)

	in := validInput()
	in.Name = "Бананы"
	_, err = svc.Create(ctx, in)
	require.NoError(t, err)

	third, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, "Бананы", third[0].Name)
}

func TestListFallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepository()
	svc := NewService(repo, cache.NewVersioned(client, "catalog", time.Minute), nil)
	ctx := context.Background()
	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	mr.Close()

	products, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	n, _ := repo.Count(ctx)
	assert.EqualValues(t, 3, n)

	require.NoError(t, svc.Seed(ctx))
	n, _ = repo.Count(ctx)
	assert.EqualValues(t, 3, n)

	repo.countErr = errors.New("db down")
	assert.Error(t, svc.Seed(ctx))
}

type blockingRepository struct {
	*memoryRepository
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingRepository) List(ctx context.Context, filter Filter) ([]Product, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.memoryRepository.List(ctx, filter)
}

func TestListSharedLoadSurvivesFirstCallerCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &blockingRepository{
		memoryRepository: newMemoryRepository(),
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	p := Product{ID: "p1", Name: "Огурцы", Price: decimal.NewFromInt(50), MinOrderIncrement: decimal.NewFromInt(10)}
	require.NoError(t, repo.memoryRepository.Create(context.Background(), p))
	svc := NewService(repo, cache.NewVersioned(client, "catalog", time.Minute), nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.List(firstCtx, Filter{})
		firstErr <- err
	}()
	select {
	case <-repo.started:
	case <-time.After(5 * time.Second):
		t.Fatal("shared load did not start")
	}

	type result struct {
		products []Product
		err      error
	}
	second := make(chan result, 1)
	go func() {
		products, err := svc.List(context.Background(), Filter{})
		second <- result{products, err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(repo.release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Len(t, res.products, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not receive the shared result")
	}
}
