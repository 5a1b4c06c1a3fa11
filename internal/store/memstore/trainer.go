package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/trainer"
)

type trainerRepo struct{ view }

func (r trainerRepo) CreatePackage(ctx context.Context, p *trainer.Package) error {
	return r.run(func(d *data) error {
		if p.Status == "" {
			p.Status = trainer.PackageActive
		}
		p.ID = d.next("personal_trainer_packages")
		p.CreatedAt = r.stamp()
		p.UpdatedAt = p.CreatedAt
		d.trainerPackages[p.ID] = *p
		return nil
	})
}

func (r trainerRepo) GetPackage(ctx context.Context, id int) (*trainer.Package, error) {
	var out *trainer.Package
	err := r.run(func(d *data) error {
		p, ok := d.trainerPackages[id]
		if !ok {
			return trainer.ErrPackageNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r trainerRepo) ListPackages(ctx context.Context, onlyActive bool) ([]trainer.Package, error) {
	out := []trainer.Package{}
	err := r.run(func(d *data) error {
		for _, p := range d.trainerPackages {
			if onlyActive && !p.IsActive() {
				continue
			}
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].PersonalTrainerID != out[j].PersonalTrainerID {
				return out[i].PersonalTrainerID < out[j].PersonalTrainerID
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (r trainerRepo) CreateAssignment(ctx context.Context, a *trainer.Assignment) error {
	return r.run(func(d *data) error {
		a.ID = d.next("personal_trainer_assignments")
		a.CreatedAt = r.stamp()
		a.UpdatedAt = a.CreatedAt
		d.assignments[a.ID] = *a
		return nil
	})
}

func (r trainerRepo) GetAssignment(ctx context.Context, id int) (*trainer.Assignment, error) {
	var out *trainer.Assignment
	err := r.run(func(d *data) error {
		a, ok := d.assignments[id]
		if !ok {
			return trainer.ErrAssignmentNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r trainerRepo) GetAssignmentForUpdate(ctx context.Context, id int) (*trainer.Assignment, error) {
	return r.GetAssignment(ctx, id)
}

func (r trainerRepo) ListAssignmentsByUser(ctx context.Context, userID int) ([]trainer.Assignment, error) {
	out := []trainer.Assignment{}
	err := r.run(func(d *data) error {
		for _, a := range d.assignments {
			if a.UserID == userID {
				out = append(out, a)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].StartDate.Equal(out[j].StartDate) {
				return out[i].StartDate.After(out[j].StartDate)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}

func (r trainerRepo) UpdateAssignmentProgress(ctx context.Context, id, dayLeft int, status trainer.AssignmentStatus, endDate *time.Time) error {
	return r.run(func(d *data) error {
		a, ok := d.assignments[id]
		if !ok {
			return trainer.ErrAssignmentNotFound
		}
		a.DayLeft = dayLeft
		a.Status = status
		a.EndDate = endDate
		a.UpdatedAt = r.stamp()
		d.assignments[id] = a
		return nil
	})
}

func (r trainerRepo) CreateSession(ctx context.Context, s *trainer.Session) error {
	return r.run(func(d *data) error {
		if _, ok := d.assignments[s.PersonalTrainerAssignmentID]; !ok {
			return trainer.ErrAssignmentNotFound
		}
		if s.Status == "" {
			s.Status = trainer.SessionScheduled
		}
		s.ID = d.next("personal_trainer_schedules")
		s.CreatedAt = r.stamp()
		s.UpdatedAt = s.CreatedAt
		d.sessions[s.ID] = *s
		return nil
	})
}

func (r trainerRepo) GetSession(ctx context.Context, id int) (*trainer.Session, error) {
	var out *trainer.Session
	err := r.run(func(d *data) error {
		s, ok := d.sessions[id]
		if !ok {
			return trainer.ErrSessionNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r trainerRepo) GetSessionForUpdate(ctx context.Context, id int) (*trainer.Session, error) {
	return r.GetSession(ctx, id)
}

func (r trainerRepo) ListSessions(ctx context.Context, assignmentID int) ([]trainer.Session, error) {
	out := []trainer.Session{}
	err := r.run(func(d *data) error {
		for _, s := range d.sessions {
			if s.PersonalTrainerAssignmentID == assignmentID {
				out = append(out, s)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
				return out[i].ScheduledAt.Before(out[j].ScheduledAt)
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (r trainerRepo) UpdateSession(ctx context.Context, s *trainer.Session) error {
	return r.run(func(d *data) error {
		cur, ok := d.sessions[s.ID]
		if !ok {
			return trainer.ErrSessionNotFound
		}
		cur.Status = s.Status
		cur.CheckInAt = s.CheckInAt
		cur.CheckOutAt = s.CheckOutAt
		cur.TrainingLog = s.TrainingLog
		cur.UpdatedAt = r.stamp()
		d.sessions[s.ID] = cur
		s.UpdatedAt = cur.UpdatedAt
		return nil
	})
}
