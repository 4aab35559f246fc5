package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core/archive"
)

type archiveRepository struct {
	db *DB
}

var _ archive.Repository = (*archiveRepository)(nil) // interface compliance check

func NewArchiveRepository(db *DB) *archiveRepository {
	return &archiveRepository{db: db}
}

// withHolder refreshes the stored holder name while the holder exists.
func (repo *archiveRepository) withHolder(arc archive.Archive) archive.Archive {
	if stu, ok := repo.db.students[arc.StudentID]; ok {
		arc.StudentName = null.StringFrom(stu.FullName())
	} else if member, ok := repo.db.staff[arc.StudentID]; ok {
		arc.StudentName = null.StringFrom(member.FullName())
	}
	return arc
}

func (repo *archiveRepository) CreateArchive(ctx context.Context, arc archive.Archive) (archive.Archive, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.archives[arc.ID] = arc
	return repo.withHolder(arc), nil
}

func (repo *archiveRepository) QueryArchives(ctx context.Context, filter archive.QueryFilter) ([]archive.Archive, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	arcs := make([]archive.Archive, 0)
	for _, a := range repo.db.archives {
		if matches(filter.CampusID, a.CampusID) &&
			matches(filter.AcademicYearID, a.AcademicYearID) &&
			matches(filter.DocumentType, a.DocumentType) &&
			matches(filter.StudentID, a.StudentID) {
			arcs = append(arcs, repo.withHolder(a))
		}
	}
	sort.Slice(arcs, func(i, j int) bool { return arcs[i].DownloadedAt.After(arcs[j].DownloadedAt) })
	return arcs, nil
}
