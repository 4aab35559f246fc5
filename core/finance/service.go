package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/student"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("Transaction non trouvée")
)

type (
	Repository interface {
		CreateTransaction(ctx context.Context, tx Transaction) (Transaction, error)
		// QueryTransactions returns the matching transactions, newest first.
		QueryTransactions(ctx context.Context, filter QueryFilter) ([]Transaction, error)
		GetTransaction(ctx context.Context, id string) (Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	StudentGetter interface {
		Get(ctx context.Context, scope core.Scope, id string) (student.Student, error)
	}

	ChainChecker interface {
		CheckChain(ctx context.Context, chain catalog.Chain) error
	}

	Service struct {
		repo     Repository
		students StudentGetter
		chain    ChainChecker
	}
)

func NewService(repo Repository, students StudentGetter, chain ChainChecker) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(chain, "chain"),
	).CheckAndPanic()

	return &Service{repo: repo, students: students, chain: chain}
}

// Create records a transaction on the caller's campus. An INCOME of category
// Scolarité tied to a student counts as a tuition payment of that student.
func (svc *Service) Create(ctx context.Context, scope core.Scope, in TransactionInput) (Transaction, error) {
	in.CampusID = scope.Campus(in.CampusID)
	if err := svc.chain.CheckChain(ctx, catalog.Chain{CampusID: in.CampusID, AcademicYearID: in.AcademicYearID}); err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:             uuid.NewString(),
		Date:           in.Date,
		Type:           in.Type,
		Category:       in.Category,
		Amount:         core.Round2(in.Amount),
		Description:    in.Description,
		CampusID:       in.CampusID,
		AcademicYearID: in.AcademicYearID,
		CreatedAt:      core.NowFunc().UTC(),
	}
	if in.StudentID != "" {
		stu, err := svc.students.Get(ctx, scope, in.StudentID)
		if core.IsNotFound(err) {
			return Transaction{}, core.NewFieldsError(core.FieldError{Field: "student_id", Error: student.ErrNotFound.Error()})
		} else if err != nil {
			return Transaction{}, errors.Wrap(err, "getting student")
		}
		tx.StudentID = null.StringFrom(stu.ID)
		tx.StudentName = null.StringFrom(stu.FullName())
	}
	return svc.repo.CreateTransaction(ctx, tx)
}

func (svc *Service) Query(ctx context.Context, scope core.Scope, filter QueryFilter) ([]Transaction, error) {
	filter.CampusID = scope.Campus(filter.CampusID)
	return svc.repo.QueryTransactions(ctx, filter)
}

func (svc *Service) Get(ctx context.Context, scope core.Scope, id string) (Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Transaction{}, ErrNotFound
	}
	tx, err := svc.repo.GetTransaction(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	if !scope.Allows(tx.CampusID) {
		return Transaction{}, ErrNotFound
	}
	return tx, nil
}

// Delete removes a transaction. A deleted tuition payment no longer counts in the student's paid tuition.
func (svc *Service) Delete(ctx context.Context, scope core.Scope, id string) error {
	if _, err := svc.Get(ctx, scope, id); err != nil {
		return err
	}
	return svc.repo.DeleteTransaction(ctx, id)
}

func (svc *Service) Balance(ctx context.Context, scope core.Scope, q BalanceQuery) (Balance, error) {
	txs, err := svc.repo.QueryTransactions(ctx, QueryFilter{
		CampusID:       scope.Campus(q.CampusID),
		AcademicYearID: q.AcademicYearID,
	})
	if err != nil {
		return Balance{}, errors.Wrap(err, "querying transactions")
	}
	return ComputeBalance(txs, q.Month), nil
}

// Categories lists the expense categories.
func (svc *Service) Categories() []string {
	cats := make([]string, len(ExpenseCategories))
	copy(cats, ExpenseCategories)
	return cats
}
