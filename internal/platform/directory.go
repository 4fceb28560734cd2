package platform

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"console/internal/logger"
	"console/internal/metrics"
)

// Notifier surfaces the outcome of directory operations to the operator.
// Implemented by the notification center; a nil-safe no-op is used in tests.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Directory is the cached view of the tenant and user directories behind the
// platform admin screens. Toggles are optimistic: the local state flips
// first, the remote call follows, and on failure the pre-change value is
// restored and an error notification raised. Single-record scope, so a
// compensating write is enough; no transaction log.
type Directory struct {
	client   *Client
	notifier Notifier

	mu      sync.RWMutex
	tenants []Tenant
	users   []User
}

// NewDirectory creates a directory view over the given backend client.
func NewDirectory(client *Client, notifier Notifier) *Directory {
	return &Directory{client: client, notifier: notifier}
}

// RefreshTenants reloads the tenant list from the backend, replacing the
// cached copy wholesale.
func (d *Directory) RefreshTenants(ctx context.Context) ([]Tenant, error) {
	tenants, err := d.client.FetchTenants(ctx)
	if err != nil {
		return d.Tenants(), err
	}
	d.mu.Lock()
	d.tenants = tenants
	d.mu.Unlock()
	return tenants, nil
}

// RefreshUsers reloads the user list from the backend.
func (d *Directory) RefreshUsers(ctx context.Context) ([]User, error) {
	users, err := d.client.FetchUsers(ctx)
	if err != nil {
		return d.Users(), err
	}
	d.mu.Lock()
	d.users = users
	d.mu.Unlock()
	return users, nil
}

// Tenants returns the cached tenant list.
func (d *Directory) Tenants() []Tenant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Tenant, len(d.tenants))
	copy(out, d.tenants)
	return out
}

// Users returns the cached user list.
func (d *Directory) Users() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]User, len(d.users))
	copy(out, d.users)
	return out
}

// ToggleTenant flips a tenant's active flag locally, then confirms with the
// backend. On failure the previous value is restored.
func (d *Directory) ToggleTenant(ctx context.Context, id string) (*Tenant, error) {
	previous, ok := d.flipTenant(id)
	if !ok {
		return nil, ErrNotInDirectory
	}

	updated, err := d.client.ToggleTenant(ctx, id)
	if err != nil {
		d.restoreTenant(id, previous)
		d.notifyError("No se pudo cambiar el estado del tenant")
		metrics.ToggleRollbacksTotal.WithLabelValues("tenant").Inc()
		logger.Warn("回滚租户状态切换", zap.String("tenant_id", id), zap.Error(err))
		return nil, err
	}

	d.mu.Lock()
	for i := range d.tenants {
		if d.tenants[i].ID == id {
			d.tenants[i] = *updated
			break
		}
	}
	d.mu.Unlock()
	return updated, nil
}

// ToggleUser flips a user's active flag locally, then confirms with the
// backend, restoring the old value on failure.
func (d *Directory) ToggleUser(ctx context.Context, id string) (*User, error) {
	previous, target, ok := d.flipUser(id)
	if !ok {
		return nil, ErrNotInDirectory
	}

	if err := d.client.SetUserActive(ctx, id, target); err != nil {
		d.restoreUser(id, previous)
		d.notifyError("No se pudo cambiar el estado del usuario")
		metrics.ToggleRollbacksTotal.WithLabelValues("user").Inc()
		logger.Warn("回滚用户状态切换", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.users {
		if d.users[i].ID == id {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotInDirectory
}

func (d *Directory) flipTenant(id string) (bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.tenants {
		if d.tenants[i].ID == id {
			previous := d.tenants[i].IsActive
			d.tenants[i].IsActive = !previous
			return previous, true
		}
	}
	return false, false
}

func (d *Directory) restoreTenant(id string, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.tenants {
		if d.tenants[i].ID == id {
			d.tenants[i].IsActive = active
			return
		}
	}
}

func (d *Directory) flipUser(id string) (previous, target bool, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			previous = d.users[i].IsActive
			d.users[i].IsActive = !previous
			return previous, !previous, true
		}
	}
	return false, false, false
}

func (d *Directory) restoreUser(id string, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			d.users[i].IsActive = active
			return
		}
	}
}

func (d *Directory) notifyError(message string) {
	if d.notifier != nil {
		d.notifier.Error(message)
	}
}
