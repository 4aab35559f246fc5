package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/finance"
)

const selectTransactions = `
SELECT t.id, to_char(t.date, 'YYYY-MM-DD') AS date, t.type, t.category, t.amount, t.description, t.student_id,
       s.first_name || ' ' || s.last_name AS student_name, t.campus_id, t.academic_year_id, t.created_at
FROM transactions t
LEFT JOIN students s ON s.id = t.student_id`

type financeRepository struct {
	db *sqlx.DB
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *sqlx.DB) *financeRepository {
	return &financeRepository{db: db}
}

func (repo *financeRepository) CreateTransaction(ctx context.Context, tx finance.Transaction) (finance.Transaction, error) {
	const q = `
INSERT INTO transactions (id, date, type, category, amount, description, student_id, campus_id, academic_year_id, created_at)
VALUES (:id, :date, :type, :category, :amount, :description, :student_id, :campus_id, :academic_year_id, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, tx); err != nil {
		return finance.Transaction{}, writeErr(err, "inserting transaction")
	}
	return repo.GetTransaction(ctx, tx.ID)
}

func (repo *financeRepository) QueryTransactions(ctx context.Context, filter finance.QueryFilter) ([]finance.Transaction, error) {
	var cond conditions
	cond.eq("t.campus_id", filter.CampusID)
	cond.eq("t.academic_year_id", filter.AcademicYearID)
	cond.eq("t.type", filter.Type)
	cond.eq("t.category", filter.Category)
	cond.eq("t.student_id", filter.StudentID)
	if filter.Month != 0 {
		cond.add("EXTRACT(MONTH FROM t.date) = ?", filter.Month)
	}
	if filter.Year != 0 {
		cond.add("EXTRACT(YEAR FROM t.date) = ?", filter.Year)
	}

	txs := make([]finance.Transaction, 0)
	q := selectTransactions + cond.String() + ` ORDER BY t.created_at DESC`
	err := repo.db.SelectContext(ctx, &txs, repo.db.Rebind(q), cond.args...)
	return txs, errors.Wrap(err, "querying transactions")
}

func (repo *financeRepository) GetTransaction(ctx context.Context, id string) (finance.Transaction, error) {
	var tx finance.Transaction
	if err := repo.db.GetContext(ctx, &tx, selectTransactions+` WHERE t.id = $1`, id); err != nil {
		return finance.Transaction{}, trapNoRowsErr(err, finance.ErrNotFound, "getting transaction")
	}
	return tx, nil
}

func (repo *financeRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return deleteErr(err, "deleting transaction")
	}
	return mustAffect(res, finance.ErrNotFound)
}
