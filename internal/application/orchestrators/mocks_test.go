package orchestrators

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"opsboard/internal/domain/account"
	"opsboard/internal/domain/calendar"
	"opsboard/internal/domain/lead"
	"opsboard/internal/domain/profile"
	"opsboard/internal/domain/project"
)

var errNotFound = errors.New("not found")

var testNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}

type mockAccountStore struct {
	byEmail map[string]account.Account
	saves   int
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{byEmail: make(map[string]account.Account)}
	for _, a := range accts {
		m.byEmail[a.Email] = a
	}
	return m
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.byEmail[email]
	if !ok {
		return account.Account{}, errNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range m.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, errNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.byEmail[a.Email] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.byEmail), nil
}

type mockLeadStore struct {
	leads map[string]lead.Lead
}

func newMockLeadStore(leads ...lead.Lead) *mockLeadStore {
	m := &mockLeadStore{leads: make(map[string]lead.Lead)}
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return m
}

func (m *mockLeadStore) GetByID(_ context.Context, id string) (lead.Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return lead.Lead{}, errNotFound
	}
	return l, nil
}

func (m *mockLeadStore) Save(_ context.Context, l lead.Lead) error {
	m.leads[l.ID] = l
	return nil
}

func (m *mockLeadStore) UpdateStage(_ context.Context, id, stage string) error {
	l, ok := m.leads[id]
	if !ok {
		return errNotFound
	}
	l.Stage = stage
	m.leads[id] = l
	return nil
}

func (m *mockLeadStore) List(_ context.Context) ([]lead.Lead, error) {
	var out []lead.Lead
	for _, l := range m.leads {
		out = append(out, l)
	}
	return out, nil
}

type mockProfileStore struct {
	profiles map[string]profile.Profile
}

func newMockProfileStore(ps ...profile.Profile) *mockProfileStore {
	m := &mockProfileStore{profiles: make(map[string]profile.Profile)}
	for _, p := range ps {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfileStore) Save(_ context.Context, p profile.Profile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileStore) GetByIDs(_ context.Context, ids []string) ([]profile.Profile, error) {
	var out []profile.Profile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockProjectStore struct {
	projects map[string]project.Project
	features []project.MajorFeature
	minors   []project.MinorFeature
	failTx   bool
}

func newMockProjectStore(ps ...project.Project) *mockProjectStore {
	m := &mockProjectStore{projects: make(map[string]project.Project)}
	for _, p := range ps {
		m.projects[p.ID] = p
	}
	return m
}

func (m *mockProjectStore) GetByID(_ context.Context, id string) (project.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return project.Project{}, errNotFound
	}
	return p, nil
}

func (m *mockProjectStore) Save(_ context.Context, p project.Project) error {
	m.projects[p.ID] = p
	return nil
}

func (m *mockProjectStore) Count(_ context.Context) (int, error) {
	return len(m.projects), nil
}

func (m *mockProjectStore) CreateMajorFeature(_ context.Context, f project.MajorFeature, minors []project.MinorFeature) error {
	if m.failTx {
		return errors.New("tx failed")
	}
	m.features = append(m.features, f)
	m.minors = append(m.minors, slices.Clone(minors)...)
	return nil
}

type mockEventStore struct {
	events map[string]calendar.Event
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{events: make(map[string]calendar.Event)}
}

func (m *mockEventStore) Save(_ context.Context, e calendar.Event) error {
	m.events[e.ID] = e
	return nil
}

func (m *mockEventStore) Delete(_ context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return errNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventStore) Count(_ context.Context) (int, error) {
	return len(m.events), nil
}
