package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Registry is the single source of truth for who is online: a mapping from
// case-insensitive username to the authenticated session holding it.
// Every operation is serialized by one mutex; no I/O happens under it.
type Registry struct {
	mu     sync.Mutex
	byName map[string]core.MemberSession
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]core.MemberSession),
	}
}

// Register inserts ms under name. The existence check and the insert share
// one critical section, so two concurrent logins for names differing only
// in case cannot both succeed.
func (r *Registry) Register(name string, ms core.MemberSession) error {
	key := domain.UsernameKey(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[key]; taken {
		return domain.ErrNameTaken
	}
	r.byName[key] = ms
	log.Info().Str("module", "app.registry").Str("sid", string(ms.ID())).Str("username", name).Int("online", len(r.byName)).Msg("registered")
	return nil
}

// Deregister removes the entry held by ms. It is a no-op when ms was never
// registered, was already removed, or the name now belongs to another session.
func (r *Registry) Deregister(ms core.MemberSession) bool {
	key := domain.UsernameKey(ms.Username())
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byName[key]
	if !ok || cur != ms {
		return false
	}
	delete(r.byName, key)
	log.Info().Str("module", "app.registry").Str("sid", string(ms.ID())).Str("username", ms.Username()).Int("online", len(r.byName)).Msg("deregistered")
	return true
}

// Snapshot returns an independent copy ordered by case-insensitive username.
func (r *Registry) Snapshot() []core.MemberSession {
	r.mu.Lock()
	keys := make([]string, 0, len(r.byName))
	for k := range r.byName {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]core.MemberSession, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.byName[k])
	}
	r.mu.Unlock()
	return out
}

// Lookup is a case-insensitive exact match.
func (r *Registry) Lookup(name string) (core.MemberSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.byName[domain.UsernameKey(name)]
	return ms, ok
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

// Usernames lists the online names as typed at login, in snapshot order.
func (r *Registry) Usernames() []string {
	return lo.Map(r.Snapshot(), func(ms core.MemberSession, _ int) string {
		return ms.Username()
	})
}
