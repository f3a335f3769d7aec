package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"account-service/internal/domain"
	"account-service/internal/query"
)

type nopLogger struct{ errors int }

func (l *nopLogger) Info(context.Context, string, ...any)  {}
func (l *nopLogger) Warn(context.Context, string, ...any)  {}
func (l *nopLogger) Debug(context.Context, string, ...any) {}
func (l *nopLogger) Error(context.Context, string, ...any) { l.errors++ }

// memCache is an in-memory token registry. Setting failExists or failSet
// makes the corresponding call return an error.
type memCache struct {
	mu         sync.Mutex
	entries    map[string][]byte
	failExists bool
	failSet    bool
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

var errCacheDown = errors.New("cache down")

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errCacheDown
	}
	c.entries[key] = value
	return nil
}

func (c *memCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failExists {
		return false, errCacheDown
	}
	_, ok := c.entries[key]
	return ok, nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) Scan(_ context.Context, pattern string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var out []string
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// fakeCodec hands out opaque sequential tokens and remembers their claims.
type fakeCodec struct {
	mu     sync.Mutex
	n      int
	claims map[string]domain.TokenClaims
}

func newFakeCodec() *fakeCodec {
	return &fakeCodec{claims: map[string]domain.TokenClaims{}}
}

func (f *fakeCodec) Encode(c domain.TokenClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	token := "tok-" + strconv.Itoa(f.n)
	f.claims[token] = c
	return token, nil
}

func (f *fakeCodec) Decode(token string) (domain.TokenClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[token]
	if !ok {
		return domain.TokenClaims{}, domain.ErrTokenMalformed
	}
	return c, nil
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Verify(p, hash string) (bool, error) { return hash == "hashed:"+p, nil }

type mockUserRepo struct{ mock.Mock }

// userResult lets an expectation echo the written user back.
func userResult(ctx context.Context, args mock.Arguments, u domain.User) (domain.User, error) {
	if fn, ok := args.Get(0).(func(context.Context, domain.User) domain.User); ok {
		return fn(ctx, u), args.Error(1)
	}
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) Insert(ctx context.Context, u domain.User) (domain.User, error) {
	return userResult(ctx, m.Called(ctx, u), u)
}

func (m *mockUserRepo) FindOne(ctx context.Context, cond query.Condition) (domain.User, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) FindMany(ctx context.Context, cond query.Condition, page query.Pagination) ([]domain.User, error) {
	args := m.Called(ctx, cond, page)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) Count(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	return userResult(ctx, m.Called(ctx, u), u)
}

func (m *mockUserRepo) SoftDelete(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

type mockAppRepo struct{ mock.Mock }

func (m *mockAppRepo) Insert(ctx context.Context, a domain.Application) (domain.Application, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *mockAppRepo) FindOne(ctx context.Context, cond query.Condition) (domain.Application, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *mockAppRepo) FindMany(ctx context.Context, cond query.Condition, page query.Pagination) ([]domain.Application, error) {
	args := m.Called(ctx, cond, page)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *mockAppRepo) Count(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAppRepo) Update(ctx context.Context, a domain.Application) (domain.Application, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *mockAppRepo) SoftDelete(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAppRepo) Delete(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

type mockGrantRepo struct{ mock.Mock }

func (m *mockGrantRepo) Insert(ctx context.Context, g domain.StaffGrant) (domain.StaffGrant, error) {
	args := m.Called(ctx, g)
	return args.Get(0).(domain.StaffGrant), args.Error(1)
}

func (m *mockGrantRepo) FindOne(ctx context.Context, cond query.Condition) (domain.StaffGrant, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(domain.StaffGrant), args.Error(1)
}

func (m *mockGrantRepo) FindMany(ctx context.Context, cond query.Condition, page query.Pagination) ([]domain.StaffGrant, error) {
	args := m.Called(ctx, cond, page)
	return args.Get(0).([]domain.StaffGrant), args.Error(1)
}

func (m *mockGrantRepo) Count(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGrantRepo) Update(ctx context.Context, g domain.StaffGrant) (domain.StaffGrant, error) {
	args := m.Called(ctx, g)
	return args.Get(0).(domain.StaffGrant), args.Error(1)
}

func (m *mockGrantRepo) Delete(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

type mockKeyRepo struct{ mock.Mock }

func (m *mockKeyRepo) Insert(ctx context.Context, k domain.APIKey) (domain.APIKey, error) {
	args := m.Called(ctx, k)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeyRepo) FindOne(ctx context.Context, cond query.Condition) (domain.APIKey, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeyRepo) FindMany(ctx context.Context, cond query.Condition, page query.Pagination) ([]domain.APIKey, error) {
	args := m.Called(ctx, cond, page)
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *mockKeyRepo) Count(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockKeyRepo) Update(ctx context.Context, k domain.APIKey) (domain.APIKey, error) {
	args := m.Called(ctx, k)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeyRepo) SoftDelete(ctx context.Context, cond query.Condition) (int64, error) {
	args := m.Called(ctx, cond)
	return args.Get(0).(int64), args.Error(1)
}

type recordingPublisher struct {
	events []domain.UserEvent
	err    error
}

func (p *recordingPublisher) PublishUserEvent(_ context.Context, e domain.UserEvent) error {
	p.events = append(p.events, e)
	return p.err
}
