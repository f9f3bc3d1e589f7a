package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/google/uuid"
)

// UsersRepo is an in-process user store backing the handler and router tests.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User // {"id": user}
	now   func() time.Time
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
		now:   time.Now,
	}
}

func (r *UsersRepo) emailTaken(email, exceptID string) bool {
	for _, u := range r.items {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *UsersRepo) Create(_ context.Context, nu user.NewUser) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(nu.Email, "") {
		return user.User{}, user.ErrEmailTaken
	}

	u := user.User{
		ID:           uuid.NewString(),
		Name:         nu.Name,
		Email:        nu.Email,
		Role:         nu.Role,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    r.now().UTC(),
	}
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Update(_ context.Context, id string, c user.Changes) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if c.Email != nil && r.emailTaken(*c.Email, id) {
		return user.User{}, user.ErrEmailTaken
	}

	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.Role != nil {
		u.Role = *c.Role
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}

	r.items[id] = u
	return u, nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *UsersRepo) SetResetToken(_ context.Context, id, hash string, expire time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	u.ResetPasswordToken = &hash
	u.ResetPasswordExpire = &expire
	r.items[id] = u
	return nil
}

func (r *UsersRepo) ClearResetToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.items[id]; ok {
		u.ResetPasswordToken = nil
		u.ResetPasswordExpire = nil
		r.items[id] = u
	}
	return nil
}

func (r *UsersRepo) GetByResetToken(_ context.Context, hash string, now time.Time) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.ResetPasswordToken == nil || u.ResetPasswordExpire == nil {
			continue
		}
		if *u.ResetPasswordToken == hash && u.ResetPasswordExpire.After(now) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) ResetPassword(_ context.Context, id, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpire = nil
	r.items[id] = u
	return u, nil
}

func (r *UsersRepo) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, u := range r.items {
		if u.ResetPasswordExpire != nil && !u.ResetPasswordExpire.After(now) {
			u.ResetPasswordToken = nil
			u.ResetPasswordExpire = nil
			r.items[id] = u
			n++
		}
	}
	return n, nil
}

// Find filters and sorts over user.Schema with the same rules as the
// postgres repository: ties break on id and the window is clamped.
func (r *UsersRepo) Find(_ context.Context, d query.Descriptor) ([]user.User, error) {
	if err := user.Schema.Validate(d); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		all = append(all, u)
	}
	r.mu.RUnlock()

	matched := all[:0]
	for _, u := range all {
		ok, err := matches(u, d.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, u)
		}
	}

	keys := d.Sort
	if len(keys) == 0 {
		keys = []query.SortKey{{Field: "createdAt", Desc: true}}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, k := range keys {
			c := compareField(matched[i], matched[j], k.Field)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})

	start, end := d.Window()
	if start >= len(matched) {
		return []user.User{}, nil
	}
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], nil
}

func (r *UsersRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

// fieldValue returns the value of a schema field in the type query.Coerce
// produces for its kind.
func fieldValue(u user.User, field string) any {
	switch field {
	case "id":
		return u.ID
	case "name":
		return u.Name
	case "email":
		return u.Email
	case "role":
		return u.Role
	case "createdAt":
		return u.CreatedAt
	}
	return nil
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		return x.Compare(b.(time.Time))
	case string:
		return strings.Compare(x, b.(string))
	}
	return 0
}

// matches applies the same operator and value rules as the SQL compiler.
func matches(u user.User, f query.Filter) (bool, error) {
	for field, ops := range f {
		kind := user.Schema[field].Kind
		got := fieldValue(u, field)

		for op, raw := range ops {
			if err := query.CheckOp(field, kind, op); err != nil {
				return false, err
			}

			if op == query.OpIn {
				vals, err := query.CoerceList(field, kind, raw)
				if err != nil {
					return false, err
				}
				found := false
				for _, v := range vals {
					if compareValues(got, v) == 0 {
						found = true
						break
					}
				}
				if !found {
					return false, nil
				}
				continue
			}

			want, err := query.Coerce(field, kind, raw)
			if err != nil {
				return false, err
			}

			c := compareValues(got, want)
			var ok bool
			switch op {
			case query.OpEq:
				ok = c == 0
			case query.OpGt:
				ok = c > 0
			case query.OpGte:
				ok = c >= 0
			case query.OpLt:
				ok = c < 0
			case query.OpLte:
				ok = c <= 0
			}
			if !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

func compareField(a, b user.User, field string) int {
	return compareValues(fieldValue(a, field), fieldValue(b, field))
}
