package inmemdb

import (
	"context"
	"sort"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db}
}

// Professors

func (repo *staffRepository) withCampus(prof staff.Professor) staff.Professor {
	prof.CampusName = repo.db.campuses[prof.CampusID].Name
	return prof
}

func (repo *staffRepository) CreateProfessor(ctx context.Context, prof staff.Professor) (staff.Professor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.professors[prof.ID] = prof
	return repo.withCampus(prof), nil
}

func (repo *staffRepository) QueryProfessors(ctx context.Context, filter staff.ProfessorFilter) ([]staff.Professor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	profs := make([]staff.Professor, 0)
	for _, p := range repo.db.professors {
		if matches(filter.CampusID, p.CampusID) {
			profs = append(profs, repo.withCampus(p))
		}
	}
	sort.Slice(profs, func(i, j int) bool {
		if profs[i].LastName != profs[j].LastName {
			return profs[i].LastName < profs[j].LastName
		}
		return profs[i].FirstName < profs[j].FirstName
	})
	return profs, nil
}

func (repo *staffRepository) GetProfessor(ctx context.Context, id string) (staff.Professor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if p, ok := repo.db.professors[id]; ok {
		return repo.withCampus(p), nil
	}
	return staff.Professor{}, staff.ErrProfessorNotFound
}

func (repo *staffRepository) UpdateProfessor(ctx context.Context, prof staff.Professor) (staff.Professor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.professors[prof.ID]; !ok {
		return staff.Professor{}, staff.ErrProfessorNotFound
	}
	repo.db.professors[prof.ID] = prof
	return repo.withCampus(prof), nil
}

func (repo *staffRepository) DeleteProfessor(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.professors[id]; !ok {
		return staff.ErrProfessorNotFound
	}
	for _, h := range repo.db.hours {
		if h.ProfessorID == id {
			return core.ErrInUse
		}
	}
	delete(repo.db.professors, id)
	return nil
}

// Hours

func (repo *staffRepository) withProfessor(hours staff.Hours) staff.Hours {
	prof := repo.db.professors[hours.ProfessorID]
	hours.ProfessorName = prof.FullName()
	hours.CampusID = prof.CampusID
	return hours
}

func (repo *staffRepository) CreateHours(ctx context.Context, hours staff.Hours) (staff.Hours, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.hours[hours.ID] = hours
	return repo.withProfessor(hours), nil
}

func (repo *staffRepository) QueryHours(ctx context.Context, filter staff.HoursFilter) ([]staff.Hours, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	hours := make([]staff.Hours, 0)
	for _, h := range repo.db.hours {
		if !matches(filter.ProfessorID, h.ProfessorID) ||
			!matches(filter.AcademicYearID, h.AcademicYearID) ||
			!matches(filter.ClassID, h.ClassID) {
			continue
		}
		h = repo.withProfessor(h)
		if matches(filter.CampusID, h.CampusID) {
			hours = append(hours, h)
		}
	}
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].Date != hours[j].Date {
			return hours[i].Date > hours[j].Date
		}
		return hours[i].StartTime > hours[j].StartTime
	})
	return hours, nil
}

func (repo *staffRepository) GetHours(ctx context.Context, id string) (staff.Hours, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if h, ok := repo.db.hours[id]; ok {
		return repo.withProfessor(h), nil
	}
	return staff.Hours{}, staff.ErrHoursNotFound
}

func (repo *staffRepository) UpdateHours(ctx context.Context, hours staff.Hours) (staff.Hours, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.hours[hours.ID]; !ok {
		return staff.Hours{}, staff.ErrHoursNotFound
	}
	repo.db.hours[hours.ID] = hours
	return repo.withProfessor(hours), nil
}

func (repo *staffRepository) DeleteHours(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.hours[id]; !ok {
		return staff.ErrHoursNotFound
	}
	delete(repo.db.hours, id)
	return nil
}

// Staff

func (repo *staffRepository) CreateStaff(ctx context.Context, member staff.Staff) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.staff[member.ID] = member
	member.CampusName = repo.db.campuses[member.CampusID].Name
	return member, nil
}

func (repo *staffRepository) QueryStaff(ctx context.Context, filter staff.StaffFilter) ([]staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]staff.Staff, 0)
	for _, m := range repo.db.staff {
		if matches(filter.CampusID, m.CampusID) && matches(filter.AcademicYearID, m.AcademicYearID) {
			m.CampusName = repo.db.campuses[m.CampusID].Name
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].LastName != members[j].LastName {
			return members[i].LastName < members[j].LastName
		}
		return members[i].FirstName < members[j].FirstName
	})
	return members, nil
}

func (repo *staffRepository) GetStaff(ctx context.Context, id string) (staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if m, ok := repo.db.staff[id]; ok {
		m.CampusName = repo.db.campuses[m.CampusID].Name
		return m, nil
	}
	return staff.Staff{}, staff.ErrStaffNotFound
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, member staff.Staff) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.staff[member.ID]; !ok {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	repo.db.staff[member.ID] = member
	member.CampusName = repo.db.campuses[member.CampusID].Name
	return member, nil
}

func (repo *staffRepository) DeleteStaff(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.staff[id]; !ok {
		return staff.ErrStaffNotFound
	}
	delete(repo.db.staff, id)
	return nil
}
