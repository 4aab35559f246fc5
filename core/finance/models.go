package finance

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
)

const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
)

// ExpenseCategories are offered when recording an expense.
var ExpenseCategories = []string{
	"Salaires",
	"Fournitures",
	"Maintenance",
	"Électricité",
	"Eau",
	"Internet",
	"Loyer",
	"Transport",
	"Formation",
	"Événements",
	"Autre",
}

type Transaction struct {
	ID             string      `json:"id" db:"id"`
	Date           string      `json:"date" db:"date"`
	Type           string      `json:"type" db:"type"`
	Category       string      `json:"category" db:"category"`
	Amount         float64     `json:"amount" db:"amount"`
	Description    string      `json:"description" db:"description"`
	StudentID      null.String `json:"student_id" db:"student_id"`
	StudentName    null.String `json:"student_name" db:"student_name"`
	CampusID       string      `json:"campus_id" db:"campus_id"`
	AcademicYearID string      `json:"academic_year_id" db:"academic_year_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// Month returns the month number of the transaction date, 0 if the date is malformed.
func (t Transaction) Month() int {
	if len(t.Date) < 7 {
		return 0
	}
	m, err := strconv.Atoi(t.Date[5:7])
	if err != nil {
		return 0
	}
	return m
}

type TransactionInput struct {
	Date           string  `json:"date" validate:"required,isodate"`
	Type           string  `json:"type" validate:"required,txtype"`
	Category       string  `json:"category" validate:"required,notblank"`
	Amount         float64 `json:"amount" validate:"gt=0"`
	Description    string  `json:"description"`
	StudentID      string  `json:"student_id" validate:"omitempty,uuid"`
	CampusID       string  `json:"campus_id" validate:"required,uuid"`
	AcademicYearID string  `json:"academic_year_id" validate:"required,uuid"`
}

func (in *TransactionInput) Validate(validate *validator.Validate) error {
	in.Date = core.CleanString(in.Date)
	in.Type = core.CleanString(in.Type)
	in.Category = core.CleanString(in.Category)
	in.Description = core.CleanString(in.Description)
	in.StudentID = core.CleanString(in.StudentID)
	return validate.Struct(in)
}

type QueryFilter struct {
	CampusID       string `query:"campus_id"`
	AcademicYearID string `query:"academic_year_id"`
	Type           string `query:"type"`
	Category       string `query:"category"`
	StudentID      string `query:"student_id"`
	// Month and Year match the transaction date; 0 means any.
	Month int `query:"month"`
	Year  int `query:"year"`
}

type BalanceQuery struct {
	CampusID       string `query:"campus_id"`
	AcademicYearID string `query:"academic_year_id"`
	Month          int    `query:"month" validate:"gte=0,lte=12"`
}

type Amounts struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type MonthAmounts struct {
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type Balance struct {
	Income     float64            `json:"income"`
	Expense    float64            `json:"expense"`
	Balance    float64            `json:"balance"`
	ByCategory map[string]Amounts `json:"by_category"`
	ByMonth    []MonthAmounts     `json:"by_month"`
}

// ComputeBalance sums `txs` into totals, per category and per calendar month.
// A non-zero `month` restricts the totals and the categories to that month;
// ByMonth always covers the twelve months.
func ComputeBalance(txs []Transaction, month int) Balance {
	bal := Balance{
		ByCategory: make(map[string]Amounts),
		ByMonth:    make([]MonthAmounts, 12),
	}
	for i := range bal.ByMonth {
		bal.ByMonth[i].Month = i + 1
	}

	for _, t := range txs {
		m := t.Month()
		if m >= 1 && m <= 12 {
			if t.Type == TypeIncome {
				bal.ByMonth[m-1].Income += t.Amount
			} else {
				bal.ByMonth[m-1].Expense += t.Amount
			}
		}
		if month != 0 && m != month {
			continue
		}
		cat := bal.ByCategory[t.Category]
		if t.Type == TypeIncome {
			bal.Income += t.Amount
			cat.Income += t.Amount
		} else {
			bal.Expense += t.Amount
			cat.Expense += t.Amount
		}
		bal.ByCategory[t.Category] = cat
	}

	bal.Income = core.Round2(bal.Income)
	bal.Expense = core.Round2(bal.Expense)
	bal.Balance = core.Round2(bal.Income - bal.Expense)
	for k, v := range bal.ByCategory {
		bal.ByCategory[k] = Amounts{Income: core.Round2(v.Income), Expense: core.Round2(v.Expense)}
	}
	for i := range bal.ByMonth {
		bal.ByMonth[i].Income = core.Round2(bal.ByMonth[i].Income)
		bal.ByMonth[i].Expense = core.Round2(bal.ByMonth[i].Expense)
	}
	return bal
}
