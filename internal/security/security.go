// Package security tracks the interaction on whose behalf configuration
// runs and answers permission checks against it.
//
// An interaction groups one or more participations, each naming a principal.
// The Manager holds at most one active interaction. Configuration that must
// not depend on the caller's permissions runs inside an interaction whose
// only participant is SystemUser.
package security

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrPermissionDenied is returned by CheckPermission when the active
	// interaction does not grant the requested permission.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInteractionActive is returned by NewInteraction when an interaction
	// is already in progress.
	ErrInteractionActive = errors.New("an interaction is already active")
)

// Permission names an operation guarded by CheckPermission.
type Permission string

// Principal identifies who an interaction acts for.
type Principal struct {
	ID    string
	Title string
}

// SystemUser is the unrestricted principal. Every permission check passes
// for it.
var SystemUser = Principal{ID: "zope.security.management.system_user", Title: "System"}

// Participation is one participant of an interaction.
type Participation interface {
	Principal() Principal
}

type participation struct {
	principal Principal
}

func (p participation) Principal() Principal { return p.principal }

// SystemParticipation is a participation of SystemUser.
var SystemParticipation Participation = participation{principal: SystemUser}

// NewParticipation returns a participation for principal.
func NewParticipation(principal Principal) Participation {
	return participation{principal: principal}
}

// Interaction is a set of participations acting together.
type Interaction struct {
	ID             string
	participations []Participation
}

// Participations returns a copy of the interaction's participations.
func (i *Interaction) Participations() []Participation {
	out := make([]Participation, len(i.participations))
	copy(out, i.participations)
	return out
}

// Manager holds the active interaction and the permissions granted to
// ordinary principals. It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	current *Interaction
	grants  map[string]map[Permission]bool
}

// NewManager returns a Manager with no active interaction and no grants.
func NewManager() *Manager {
	return &Manager{grants: make(map[string]map[Permission]bool)}
}

// Grant allows principalID to perform perm.
func (m *Manager) Grant(principalID string, perm Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perms, ok := m.grants[principalID]
	if !ok {
		perms = make(map[Permission]bool)
		m.grants[principalID] = perms
	}
	perms[perm] = true
}

// NewInteraction starts an interaction for the given participations.
func (m *Manager) NewInteraction(parts ...Participation) (*Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return nil, fmt.Errorf("security: %w (id %s)", ErrInteractionActive, m.current.ID)
	}
	i := &Interaction{ID: uuid.NewString(), participations: append([]Participation(nil), parts...)}
	m.current = i
	return i, nil
}

// EndInteraction ends the active interaction. Calling it with no active
// interaction does nothing.
func (m *Manager) EndInteraction() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// Current returns the active interaction, or nil.
func (m *Manager) Current() *Interaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CheckPermission reports whether the active interaction may perform perm.
// Every participant must be allowed: either the system user or a principal
// granted perm. With no active interaction the check fails.
func (m *Manager) CheckPermission(perm Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || len(m.current.participations) == 0 {
		return fmt.Errorf("security: %s: %w: no interaction", perm, ErrPermissionDenied)
	}
	for _, p := range m.current.participations {
		principal := p.Principal()
		if principal == SystemUser {
			continue
		}
		if !m.grants[principal.ID][perm] {
			return fmt.Errorf("security: %s: %w for principal %q", perm, ErrPermissionDenied, principal.ID)
		}
	}
	return nil
}

type interactionKey struct{}

// WithInteraction returns a copy of ctx carrying i.
func WithInteraction(ctx context.Context, i *Interaction) context.Context {
	return context.WithValue(ctx, interactionKey{}, i)
}

// FromContext returns the interaction stored in ctx, or nil.
func FromContext(ctx context.Context) *Interaction {
	i, _ := ctx.Value(interactionKey{}).(*Interaction)
	return i
}
