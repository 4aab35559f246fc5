package inmemdb

import (
	"context"
	"sort"
	"strconv"

	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core/finance"
)

type financeRepository struct {
	db *DB
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *DB) *financeRepository {
	return &financeRepository{db: db}
}

func (repo *financeRepository) withStudent(tx finance.Transaction) finance.Transaction {
	tx.StudentName = null.String{}
	if stu, ok := repo.db.students[tx.StudentID.String]; ok && tx.StudentID.Valid {
		tx.StudentName = null.StringFrom(stu.FullName())
	}
	return tx
}

func (repo *financeRepository) CreateTransaction(ctx context.Context, tx finance.Transaction) (finance.Transaction, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.transactions[tx.ID] = tx
	return repo.withStudent(tx), nil
}

func (repo *financeRepository) QueryTransactions(ctx context.Context, filter finance.QueryFilter) ([]finance.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	txs := make([]finance.Transaction, 0)
	for _, t := range repo.db.transactions {
		if !matches(filter.CampusID, t.CampusID) ||
			!matches(filter.AcademicYearID, t.AcademicYearID) ||
			!matches(filter.Type, t.Type) ||
			!matches(filter.Category, t.Category) ||
			!matches(filter.StudentID, t.StudentID.String) ||
			(filter.Month != 0 && t.Month() != filter.Month) ||
			(filter.Year != 0 && (len(t.Date) < 4 || t.Date[:4] != strconv.Itoa(filter.Year))) {
			continue
		}
		txs = append(txs, repo.withStudent(t))
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	return txs, nil
}

func (repo *financeRepository) GetTransaction(ctx context.Context, id string) (finance.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if t, ok := repo.db.transactions[id]; ok {
		return repo.withStudent(t), nil
	}
	return finance.Transaction{}, finance.ErrNotFound
}

func (repo *financeRepository) DeleteTransaction(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.transactions[id]; !ok {
		return finance.ErrNotFound
	}
	delete(repo.db.transactions, id)
	return nil
}
