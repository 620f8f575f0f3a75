package rbac

import (
	"context"
	"sort"
	"sync"

	"github.com/templatecore/core/internal/shared"
)

type memoryRepo struct {
	mu          sync.Mutex
	permissions map[int64]Permission
	routes      map[int64]Route
	effective   map[int64][]string
	nextID      int64
	inserts     int
	finds       int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		permissions: make(map[int64]Permission),
		routes:      make(map[int64]Route),
		effective:   make(map[int64][]string),
	}
}

func (m *memoryRepo) FindPermissionByEndpoint(ctx context.Context, endpoint string) (*Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	for _, p := range m.permissions {
		if p.Endpoint == endpoint {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepo) InsertPermission(ctx context.Context, endpoint string, active bool) (Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.permissions {
		if p.Endpoint == endpoint {
			return Permission{}, ErrPermissionConflict
		}
	}
	m.nextID++
	m.inserts++
	p := Permission{ID: m.nextID, Endpoint: endpoint, IsActive: active}
	m.permissions[p.ID] = p
	return p, nil
}

func (m *memoryRepo) GetPermission(ctx context.Context, id int64) (Permission, error) {
	p, ok := m.permissions[id]
	if !ok {
		return Permission{}, ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) FindPermissions(ctx context.Context, page shared.PageRequest) ([]Permission, int64, error) {
	all := make([]Permission, 0, len(m.permissions))
	for _, p := range m.permissions {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Endpoint < all[j].Endpoint })
	return paginate(all, page), int64(len(all)), nil
}

func (m *memoryRepo) PermissionsByEndpoints(ctx context.Context, endpoints []string) ([]Permission, error) {
	want := make(map[string]struct{}, len(endpoints))
	for _, e := range endpoints {
		want[e] = struct{}{}
	}
	var out []Permission
	for _, p := range m.permissions {
		if _, ok := want[p.Endpoint]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out, nil
}

func (m *memoryRepo) UpdatePermission(ctx context.Context, p Permission) error {
	if _, ok := m.permissions[p.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range m.permissions {
		if id != p.ID && existing.Endpoint == p.Endpoint {
			return ErrPermissionConflict
		}
	}
	m.permissions[p.ID] = p
	return nil
}

func (m *memoryRepo) SetPermissionInactive(ctx context.Context, id int64) error {
	p, ok := m.permissions[id]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = false
	m.permissions[id] = p
	return nil
}

func (m *memoryRepo) GetRoute(ctx context.Context, id int64) (Route, error) {
	r, ok := m.routes[id]
	if !ok {
		return Route{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryRepo) FindRouteByURL(ctx context.Context, url string) (Route, error) {
	for _, r := range m.routes {
		if r.URL == url {
			return r, nil
		}
	}
	return Route{}, ErrNotFound
}

func (m *memoryRepo) FindRoutes(ctx context.Context, page shared.PageRequest) ([]Route, int64, error) {
	all := make([]Route, 0, len(m.routes))
	for _, r := range m.routes {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].URL < all[j].URL })
	return paginate(all, page), int64(len(all)), nil
}

func (m *memoryRepo) CreateRoute(ctx context.Context, r Route) (Route, error) {
	for _, existing := range m.routes {
		if existing.URL == r.URL {
			return Route{}, ErrRouteConflict
		}
	}
	m.nextID++
	r.ID = m.nextID
	m.routes[r.ID] = r
	return r, nil
}

func (m *memoryRepo) UpdateRoute(ctx context.Context, r Route) error {
	if _, ok := m.routes[r.ID]; !ok {
		return ErrNotFound
	}
	m.routes[r.ID] = r
	return nil
}

func (m *memoryRepo) SetRouteInactive(ctx context.Context, id int64) error {
	r, ok := m.routes[id]
	if !ok {
		return ErrNotFound
	}
	r.IsActive = false
	m.routes[id] = r
	return nil
}

func (m *memoryRepo) EffectiveEndpoints(ctx context.Context, userID int64) ([]string, error) {
	return m.effective[userID], nil
}

func paginate[T any](all []T, page shared.PageRequest) []T {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
