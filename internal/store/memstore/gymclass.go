package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
)

type classRepo struct{ view }

func (r classRepo) CreateClass(ctx context.Context, g *gymclass.GymClass) error {
	return r.run(func(d *data) error {
		if g.Status == "" {
			g.Status = gymclass.StatusActive
		}
		g.ID = d.next("gym_classes")
		g.CreatedAt = r.stamp()
		g.UpdatedAt = g.CreatedAt
		d.classes[g.ID] = *g
		return nil
	})
}

func (r classRepo) GetClass(ctx context.Context, id int) (*gymclass.GymClass, error) {
	var out *gymclass.GymClass
	err := r.run(func(d *data) error {
		g, ok := d.classes[id]
		if !ok {
			return gymclass.ErrClassNotFound
		}
		out = &g
		return nil
	})
	return out, err
}

func (r classRepo) ListClasses(ctx context.Context, onlyActive bool) ([]gymclass.GymClass, error) {
	out := []gymclass.GymClass{}
	err := r.run(func(d *data) error {
		for _, g := range d.classes {
			if onlyActive && !g.IsActive() {
				continue
			}
			out = append(out, g)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (r classRepo) CreateSchedule(ctx context.Context, s *gymclass.Schedule) error {
	return r.run(func(d *data) error {
		if _, ok := d.classes[s.GymClassID]; !ok {
			return gymclass.ErrClassNotFound
		}
		s.ID = d.next("gym_class_schedules")
		s.CreatedAt = r.stamp()
		s.UpdatedAt = s.CreatedAt
		d.schedules[s.ID] = *s
		return nil
	})
}

func (r classRepo) GetSchedule(ctx context.Context, id int) (*gymclass.Schedule, error) {
	var out *gymclass.Schedule
	err := r.run(func(d *data) error {
		s, ok := d.schedules[id]
		if !ok {
			return gymclass.ErrScheduleNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r classRepo) GetScheduleForUpdate(ctx context.Context, id int) (*gymclass.Schedule, error) {
	return r.GetSchedule(ctx, id)
}

func (r classRepo) ListSchedules(ctx context.Context, classID int, from time.Time) ([]gymclass.Schedule, error) {
	out := []gymclass.Schedule{}
	fromDate := from.Format(gymclass.DateLayout)
	err := r.run(func(d *data) error {
		for _, s := range d.schedules {
			if s.GymClassID == classID && s.Date.Format(gymclass.DateLayout) >= fromDate {
				out = append(out, s)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			di, dj := out[i].Date.Format(gymclass.DateLayout), out[j].Date.Format(gymclass.DateLayout)
			if di != dj {
				return di < dj
			}
			return out[i].StartTime < out[j].StartTime
		})
		return nil
	})
	return out, err
}

func (r classRepo) DecrementAvailable(ctx context.Context, scheduleID int) (bool, error) {
	var ok bool
	err := r.run(func(d *data) error {
		s, found := d.schedules[scheduleID]
		if !found || s.AvailableSlot <= 0 {
			return nil
		}
		s.AvailableSlot--
		s.UpdatedAt = r.stamp()
		d.schedules[scheduleID] = s
		ok = true
		return nil
	})
	return ok, err
}

func (r classRepo) IncrementAvailable(ctx context.Context, scheduleID int) error {
	return r.run(func(d *data) error {
		s, ok := d.schedules[scheduleID]
		if !ok {
			return nil
		}
		if s.AvailableSlot < s.Slot {
			s.AvailableSlot++
		}
		s.UpdatedAt = r.stamp()
		d.schedules[scheduleID] = s
		return nil
	})
}

func (r classRepo) SetCapacity(ctx context.Context, scheduleID, slot, available int) error {
	return r.run(func(d *data) error {
		s, ok := d.schedules[scheduleID]
		if !ok {
			return nil
		}
		s.Slot = slot
		s.AvailableSlot = available
		s.UpdatedAt = r.stamp()
		d.schedules[scheduleID] = s
		return nil
	})
}

func (r classRepo) CreateAttendance(ctx context.Context, a *gymclass.Attendance) error {
	return r.run(func(d *data) error {
		for _, existing := range d.attendances {
			if existing.UserID == a.UserID && existing.GymClassScheduleID == a.GymClassScheduleID {
				return gymclass.ErrAlreadyBooked
			}
		}
		if a.Status == "" {
			a.Status = gymclass.AttendanceAssigned
		}
		a.ID = d.next("gym_class_attendances")
		a.CreatedAt = r.stamp()
		a.UpdatedAt = a.CreatedAt
		d.attendances[a.ID] = *a
		return nil
	})
}

func (r classRepo) GetAttendance(ctx context.Context, id int) (*gymclass.Attendance, error) {
	var out *gymclass.Attendance
	err := r.run(func(d *data) error {
		a, ok := d.attendances[id]
		if !ok {
			return gymclass.ErrAttendanceNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r classRepo) AttendanceExists(ctx context.Context, userID, scheduleID int) (bool, error) {
	var exists bool
	err := r.run(func(d *data) error {
		for _, a := range d.attendances {
			if a.UserID == userID && a.GymClassScheduleID == scheduleID {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

func (r classRepo) CountAttendances(ctx context.Context, scheduleID int) (int, error) {
	var n int
	err := r.run(func(d *data) error {
		for _, a := range d.attendances {
			if a.GymClassScheduleID == scheduleID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r classRepo) DeleteAttendance(ctx context.Context, id int) error {
	return r.run(func(d *data) error {
		if _, ok := d.attendances[id]; !ok {
			return gymclass.ErrAttendanceNotFound
		}
		delete(d.attendances, id)
		return nil
	})
}

func (r classRepo) UpdateAttendanceStatus(ctx context.Context, id int, status gymclass.AttendanceStatus, attendedAt *time.Time) error {
	return r.run(func(d *data) error {
		a, ok := d.attendances[id]
		if !ok {
			return gymclass.ErrAttendanceNotFound
		}
		a.Status = status
		a.AttendedAt = attendedAt
		a.UpdatedAt = r.stamp()
		d.attendances[id] = a
		return nil
	})
}

func (r classRepo) ListAttendancesByUser(ctx context.Context, userID int) ([]gymclass.Attendance, error) {
	return r.listAttendances(func(a gymclass.Attendance) bool { return a.UserID == userID }, true)
}

func (r classRepo) ListAttendancesBySchedule(ctx context.Context, scheduleID int) ([]gymclass.Attendance, error) {
	return r.listAttendances(func(a gymclass.Attendance) bool { return a.GymClassScheduleID == scheduleID }, false)
}

func (r classRepo) listAttendances(match func(gymclass.Attendance) bool, newestFirst bool) ([]gymclass.Attendance, error) {
	out := []gymclass.Attendance{}
	err := r.run(func(d *data) error {
		for _, a := range d.attendances {
			if match(a) {
				out = append(out, a)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if newestFirst {
				return out[i].ID > out[j].ID
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}
