package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/supinter/ums/apps/api/echo"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/user"
	"github.com/supinter/ums/tests"
)

func Test_financeApi_transactions(t *testing.T) {
	c := resetDB(t)
	stu := testutil.CreateStudent(t, deps.StudentSvc, c, "Awa", "Koné")
	local := getToken(t, createStaffUser(t, user.RoleAccountant, c.Campus.ID))
	remote := getToken(t, createStaffUser(t, user.RoleAccountant, c.OtherCampus.ID))

	income := finance.TransactionInput{
		Date:           "2024-10-15",
		Type:           finance.TypeIncome,
		Category:       "Scolarité",
		Amount:         150000,
		Description:    "Premier versement",
		StudentID:      stu.ID,
		AcademicYearID: c.Year.ID,
	}
	rec := do(http.MethodPost, "/api/transactions", local, marshallObj(t, income))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tx finance.Transaction
	decode(t, rec, &tx)
	assert.Equal(t, c.Campus.ID, tx.CampusID)
	assert.Equal(t, "Awa Koné", tx.StudentName.String)

	bad := income
	bad.Type = "GIFT"
	negative := income
	negative.Amount = -5
	remoteStudent := income
	remoteStudent.Date = "2024-10-16"

	runHTTPTests(t, []httpTest{
		{
			name: "bad type", method: http.MethodPost, path: "/api/transactions", token: local, body: marshallObj(t, bad),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"type": "type must be INCOME or EXPENSE"}),
		},
		{
			name: "negative amount", method: http.MethodPost, path: "/api/transactions", token: local,
			body: marshallObj(t, negative), wantCode: http.StatusBadRequest,
		},
		{
			name: "student of another campus", method: http.MethodPost, path: "/api/transactions", token: remote,
			body:     marshallObj(t, remoteStudent),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"student_id": "Étudiant non trouvé"}),
		},
		{name: "list", path: "/api/transactions", token: local, wantData: marshallList(t, tx)},
		{name: "list by student", path: "/api/transactions?student_id=" + stu.ID, token: local, wantData: marshallList(t, tx)},
		{name: "list of another campus", path: "/api/transactions", token: remote, wantData: marshallList(t)},
		{name: "detail", path: "/api/transactions/" + tx.ID, token: local, wantData: marshallObj(t, tx)},
		{name: "detail from another campus", path: "/api/transactions/" + tx.ID, token: remote, wantCode: http.StatusNotFound},
		{name: "delete from another campus", method: http.MethodDelete, path: "/api/transactions/" + tx.ID, token: remote, wantCode: http.StatusNotFound},
		{
			name: "delete", method: http.MethodDelete, path: "/api/transactions/" + tx.ID, token: local,
			wantData: marshallObj(t, MessageResponse{Message: "Transaction supprimée"}),
		},
		{name: "gone", path: "/api/transactions/" + tx.ID, token: local, wantCode: http.StatusNotFound},
	})
}

func Test_financeApi_balance(t *testing.T) {
	c := resetDB(t)
	local := getToken(t, createStaffUser(t, user.RoleAccountant, c.Campus.ID))
	remote := getToken(t, createStaffUser(t, user.RoleAccountant, c.OtherCampus.ID))

	for _, in := range []finance.TransactionInput{
		{Date: "2024-10-02", Type: finance.TypeIncome, Category: "Scolarité", Amount: 300000},
		{Date: "2024-10-20", Type: finance.TypeExpense, Category: "Salaires", Amount: 120000},
		{Date: "2024-11-05", Type: finance.TypeIncome, Category: "Scolarité", Amount: 100000},
		{Date: "2024-11-06", Type: finance.TypeExpense, Category: "Électricité", Amount: 30000.5},
	} {
		in.AcademicYearID = c.Year.ID
		rec := do(http.MethodPost, "/api/transactions", local, marshallObj(t, in))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	t.Run("whole year", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/finance/balance?academic_year_id="+c.Year.ID, local)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var bal finance.Balance
		decode(t, rec, &bal)
		assert.Equal(t, 400000.0, bal.Income)
		assert.Equal(t, 150000.5, bal.Expense)
		assert.Equal(t, 249999.5, bal.Balance)
		assert.Equal(t, map[string]finance.Amounts{
			"Scolarité":   {Income: 400000},
			"Salaires":    {Expense: 120000},
			"Électricité": {Expense: 30000.5},
		}, bal.ByCategory)
		require.Len(t, bal.ByMonth, 12)
		assert.Equal(t, finance.MonthAmounts{Month: 10, Income: 300000, Expense: 120000}, bal.ByMonth[9])
		assert.Equal(t, finance.MonthAmounts{Month: 11, Income: 100000, Expense: 30000.5}, bal.ByMonth[10])
		assert.Equal(t, finance.MonthAmounts{Month: 1}, bal.ByMonth[0])
	})

	t.Run("one month", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/finance/balance?month=11", local)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var bal finance.Balance
		decode(t, rec, &bal)
		assert.Equal(t, 100000.0, bal.Income)
		assert.Equal(t, 30000.5, bal.Expense)
		assert.Len(t, bal.ByCategory, 2)
		assert.Equal(t, 300000.0, bal.ByMonth[9].Income)
	})

	t.Run("another campus", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/finance/balance", remote)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var bal finance.Balance
		decode(t, rec, &bal)
		assert.Zero(t, bal.Income)
		assert.Zero(t, bal.Expense)
		assert.Empty(t, bal.ByCategory)
	})

	t.Run("filter by month", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/transactions?type=EXPENSE&month=10&year=2024", local)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var txs []finance.Transaction
		decode(t, rec, &txs)
		require.Len(t, txs, 1)
		assert.Equal(t, "Salaires", txs[0].Category)
	})

	runHTTPTests(t, []httpTest{
		{name: "bad month", path: "/api/finance/balance?month=13", token: local, wantCode: http.StatusBadRequest},
		{name: "categories", path: "/api/finance/categories", token: local, wantData: marshallObj(t, finance.ExpenseCategories)},
	})
}
