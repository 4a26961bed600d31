package workload

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhub/internal/domain"
)

type dashboardFixture struct {
	now                time.Time
	ada, bob, cy       domain.User
	projectA, projectB uuid.UUID
	users              []domain.User
	tasks              []domain.Task
}

func newDashboardFixture() dashboardFixture {
	f := dashboardFixture{
		now:      time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC), // Wednesday, W11
		ada:      domain.User{ID: uuid.New(), Name: "Ada"},
		bob:      domain.User{ID: uuid.New(), Name: "Bob"},
		cy:       domain.User{ID: uuid.New(), Name: "Cy"},
		projectA: uuid.New(),
		projectB: uuid.New(),
	}
	f.users = []domain.User{f.cy, f.bob, f.ada}
	f.tasks = []domain.Task{
		// Ada: overloaded in W11, one overdue, one due today.
		task(assignedTo(f.ada.ID), inProject(f.projectA), withHours(30), withStart(date(2025, time.March, 10)), withDue(date(2025, time.March, 11))),
		task(assignedTo(f.ada.ID), inProject(f.projectA), withHours(15), withDue(date(2025, time.March, 12))),
		task(assignedTo(f.ada.ID), inProject(f.projectB), withStatus(domain.TaskStatusDone), withHours(5), withDue(date(2025, time.March, 14))),
		// Bob: only todo work, so available.
		task(assignedTo(f.bob.ID), inProject(f.projectB), withStatus(domain.TaskStatusTodo), withHours(8), withDue(date(2025, time.April, 2))),
		// Unassigned work never shows up on a card.
		task(inProject(f.projectA), withHours(99), withDue(date(2025, time.March, 12))),
	}
	return f
}

func cardFor(t *testing.T, dash Dashboard, id uuid.UUID) Card {
	t.Helper()
	for _, c := range dash.Cards {
		if c.User.ID == id {
			return c
		}
	}
	require.Failf(t, "card not found", "user %s", id)
	return Card{}
}

func TestBuildDashboardCards(t *testing.T) {
	f := newDashboardFixture()
	dash := BuildDashboard(f.users, f.tasks, View{}, f.now)

	require.Len(t, dash.Cards, 3)
	assert.Equal(t, []string{"Ada", "Bob", "Cy"}, []string{dash.Cards[0].User.Name, dash.Cards[1].User.Name, dash.Cards[2].User.Name})
	assert.True(t, dash.HasOverload)

	ada := cardFor(t, dash, f.ada.ID)
	assert.Equal(t, StatusCounts{Total: 3, InProgress: 2, Done: 1, Overdue: 1, DueToday: 1}, ada.Counts)
	assert.True(t, ada.Overloaded)
	require.Len(t, ada.Overloads, 1)
	assert.InDelta(t, 50, ada.Overloads[0].Hours, 1e-9)
	assert.InDelta(t, 10, ada.Overloads[0].Overflow, 1e-9)
	assert.InDelta(t, 50, ada.CurrentWeek.Hours, 1e-9)
	assert.True(t, ada.CurrentWeek.Overloaded)
	assert.InDelta(t, 45, ada.ActiveHours, 1e-9)
	assert.InDelta(t, 45, ada.InProgressHours, 1e-9)
	assert.InDelta(t, 5, ada.DoneHours, 1e-9)
	assert.InDelta(t, 50, ada.Availability.BusyHours, 1e-9)
	assert.Zero(t, ada.Availability.AvailableHours)
	assert.False(t, ada.Available())

	bob := cardFor(t, dash, f.bob.ID)
	assert.True(t, bob.Available())
	assert.False(t, bob.Overloaded)
	assert.Empty(t, bob.Weekly)
	assert.Equal(t, date(2025, time.March, 12), bob.Availability.NextAvailable)

	cy := cardFor(t, dash, f.cy.ID)
	assert.NotNil(t, cy.Tasks)
	assert.Zero(t, cy.Counts.Total)
}

func TestBuildDashboardFilters(t *testing.T) {
	f := newDashboardFixture()

	tests := []struct {
		name      string
		view      View
		wantUsers []string
	}{
		{"user filter drops others", View{UserID: &f.bob.ID}, []string{"Bob"}},
		{"status filter drops users without matches", View{Status: domain.TaskStatusDone}, []string{"Ada"}},
		{"project filter", View{ProjectID: &f.projectB}, []string{"Ada", "Bob"}},
		{"month filter keeps idle users", View{Month: time.April}, []string{"Bob", "Ada", "Cy"}},
		{"available bucket", View{Availability: BucketAvailable}, []string{"Bob", "Cy"}},
		{"busy bucket", View{Availability: BucketBusy}, []string{"Ada"}},
		{"overload bucket", View{Availability: BucketOverload}, []string{"Ada"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dash := BuildDashboard(f.users, f.tasks, tc.view, f.now)
			names := make([]string, 0, len(dash.Cards))
			for _, c := range dash.Cards {
				names = append(names, c.User.Name)
			}
			assert.Equal(t, tc.wantUsers, names)
		})
	}
}

func TestBuildDashboardMonthWeekWindow(t *testing.T) {
	f := newDashboardFixture()

	// March 10-16 is the third week of March 2025.
	dash := BuildDashboard(f.users, f.tasks, View{Month: time.March, WeekOfMonth: 3}, f.now)
	ada := cardFor(t, dash, f.ada.ID)
	assert.Equal(t, 3, ada.Counts.Total)
	require.Len(t, ada.Overloads, 1)
	assert.True(t, dash.HasOverload)

	dash = BuildDashboard(f.users, f.tasks, View{Month: time.March, WeekOfMonth: 2}, f.now)
	ada = cardFor(t, dash, f.ada.ID)
	assert.Zero(t, ada.Counts.Total)
	assert.Empty(t, ada.Overloads)
	assert.False(t, dash.HasOverload)
}

func TestBucketValid(t *testing.T) {
	assert.True(t, Bucket("").Valid())
	assert.True(t, BucketOverload.Valid())
	assert.False(t, Bucket("idle").Valid())
}
