package projections

import (
	"context"
	"errors"
	"time"

	"opsboard/internal/domain/calendar"
	"opsboard/internal/domain/lead"
	"opsboard/internal/domain/profile"
	"opsboard/internal/domain/project"
)

func day(s string) time.Time {
	t, err := time.Parse(calendar.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

type mockEventStore struct {
	events []calendar.Event
	calls  int
}

func (m *mockEventStore) ListByDateRange(_ context.Context, from, to string) ([]calendar.Event, error) {
	m.calls++
	var out []calendar.Event
	for _, e := range m.events {
		end := e.StartDate
		if !e.EndDate.IsZero() {
			end = e.EndDate
		}
		if e.StartDate.Format(calendar.DateLayout) <= to && end.Format(calendar.DateLayout) >= from {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockLeadStore struct {
	leads []lead.Lead
}

func (m *mockLeadStore) List(context.Context) ([]lead.Lead, error) { return m.leads, nil }

func (m *mockLeadStore) CountByStage(context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, l := range m.leads {
		counts[l.Stage]++
	}
	return counts, nil
}

type mockProjectStore struct {
	projects map[string]project.Project
	majors   []project.MajorFeature
	minors   []project.MinorFeature
}

func (m *mockProjectStore) GetByID(_ context.Context, id string) (project.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return project.Project{}, errors.New("not found")
	}
	return p, nil
}

func (m *mockProjectStore) List(context.Context) ([]project.Project, error) {
	var out []project.Project
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProjectStore) Count(context.Context) (int, error) { return len(m.projects), nil }

func (m *mockProjectStore) ListMajorFeatures(_ context.Context, projectID string) ([]project.MajorFeature, error) {
	var out []project.MajorFeature
	for _, f := range m.majors {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockProjectStore) ListMinorFeatures(_ context.Context, majorID string) ([]project.MinorFeature, error) {
	var out []project.MinorFeature
	for _, f := range m.minors {
		if f.MajorFeatureID == majorID {
			out = append(out, f)
		}
	}
	return out, nil
}

type mockProfileStore struct {
	profiles []profile.Profile
}

func (m *mockProfileStore) List(context.Context) ([]profile.Profile, error) { return m.profiles, nil }

func (m *mockProfileStore) GetByIDs(_ context.Context, ids []string) ([]profile.Profile, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []profile.Profile
	for _, p := range m.profiles {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

type prefixResolver struct{}

func (prefixResolver) PublicURL(bucket, key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + bucket + "/" + key
}
