package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/store"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"
	"github.com/ahnafi/gym-management-app-sub000/internal/visit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithin_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.Repos().Users.Create(ctx, "Dina", "dina@example.com", "hash", user.RoleMember)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Within(ctx, func(r store.Repos) error {
		end := time.Now().Add(24 * time.Hour)
		require.NoError(t, r.Users.UpdateMembershipSummary(ctx, u.ID, user.MembershipActive, &end))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Repos().Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.MembershipInactive, got.MembershipStatus)
	assert.Nil(t, got.MembershipEndDate)
}

func TestWithin_Commits(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Within(ctx, func(r store.Repos) error {
		_, err := r.Users.Create(ctx, "Dina", "dina@example.com", "hash", user.RoleMember)
		return err
	})
	require.NoError(t, err)

	exists, err := s.Repos().Users.EmailExists(ctx, "dina@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Repos().Users.Create(ctx, "A", "a@example.com", "h", user.RoleMember)
	require.NoError(t, err)
	_, err = s.Repos().Users.Create(ctx, "B", "a@example.com", "h", user.RoleMember)
	assert.ErrorIs(t, err, user.ErrEmailExists)
}

func TestClasses_DecrementNeverBelowZero(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Repos().Classes

	class := &gymclass.GymClass{Name: "Yoga"}
	require.NoError(t, repo.CreateClass(ctx, class))
	sched := &gymclass.Schedule{GymClassID: class.ID, Date: time.Now(), StartTime: "07:00", EndTime: "08:00", Slot: 1, AvailableSlot: 1}
	require.NoError(t, repo.CreateSchedule(ctx, sched))

	ok, err := repo.DecrementAvailable(ctx, sched.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementAvailable(ctx, sched.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.IncrementAvailable(ctx, sched.ID))
	require.NoError(t, repo.IncrementAvailable(ctx, sched.ID))
	got, err := repo.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableSlot)
}

func TestClasses_DuplicateAttendance(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Repos().Classes

	require.NoError(t, repo.CreateAttendance(ctx, &gymclass.Attendance{UserID: 1, GymClassScheduleID: 2}))
	err := repo.CreateAttendance(ctx, &gymclass.Attendance{UserID: 1, GymClassScheduleID: 2})
	assert.ErrorIs(t, err, gymclass.ErrAlreadyBooked)
}

func TestMemberships_ExpireAndPromote(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Repos().Memberships
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, repo.CreateHistory(ctx, &membership.History{UserID: 1, MembershipPackageID: 1, StartDate: day(1), EndDate: day(10), Status: membership.HistoryActive}))
	require.NoError(t, repo.CreateHistory(ctx, &membership.History{UserID: 1, MembershipPackageID: 1, StartDate: day(11), EndDate: day(20), Status: membership.HistoryUpcoming}))
	require.NoError(t, repo.CreateHistory(ctx, &membership.History{UserID: 1, MembershipPackageID: 1, StartDate: day(21), EndDate: day(30), Status: membership.HistoryUpcoming}))

	err := repo.CreateHistory(ctx, &membership.History{UserID: 1, MembershipPackageID: 1, StartDate: day(1), EndDate: day(2), Status: membership.HistoryActive})
	assert.Error(t, err)

	n, err := repo.ExpireEnded(ctx, day(12))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.PromoteDue(ctx, day(12))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	histories, err := repo.ListHistories(ctx, 1)
	require.NoError(t, err)
	require.Len(t, histories, 3)
	assert.Equal(t, membership.HistoryUpcoming, histories[0].Status)
	assert.Equal(t, membership.HistoryActive, histories[1].Status)
	assert.Equal(t, membership.HistoryExpired, histories[2].Status)
}

func TestVisits_OneOpenVisit(t *testing.T) {
	s := New()
	ctx := context.Background()
	repo := s.Repos().Visits
	now := time.Now()

	v, err := repo.CheckIn(ctx, 1, now)
	require.NoError(t, err)

	_, err = repo.CheckIn(ctx, 1, now)
	assert.ErrorIs(t, err, visit.ErrAlreadyCheckedIn)

	require.NoError(t, repo.CheckOut(ctx, v.ID, now.Add(time.Hour)))
	assert.ErrorIs(t, repo.CheckOut(ctx, v.ID, now), visit.ErrNotCheckedIn)

	_, err = repo.CheckIn(ctx, 1, now.Add(2*time.Hour))
	assert.NoError(t, err)
}
