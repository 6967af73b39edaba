package services

import (
	"reflect"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func datePtr(t *testing.T, s string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("invalid date %q: %v", s, err)
	}
	return &d
}

func methodPtr(m models.PaymentMethod) *models.PaymentMethod { return &m }

func amounts(txs []models.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Amount.String()
	}
	return out
}

func TestTransactionOrdering(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "default", raw: "", want: []string{"date DESC", "created_at DESC", "id ASC"}},
		{name: "descending_amount", raw: "-amount", want: []string{"amount DESC", "id ASC"}},
		{name: "multiple_fields", raw: "date, -created_at", want: []string{"date ASC", "created_at DESC", "id ASC"}},
		{name: "unknown_fields_ignored", raw: "description,-amount", want: []string{"amount DESC", "id ASC"}},
		{name: "only_unknown_falls_back", raw: "user_id", want: []string{"date DESC", "created_at DESC", "id ASC"}},
		{name: "duplicates_dropped", raw: "amount,-amount", want: []string{"amount ASC", "id ASC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transactionOrdering(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("transactionOrdering(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCreateTransaction(t *testing.T) {
	t.Run("valid_with_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, "Groceries", models.CategoryTypeExpense)

		tx, err := svc.CreateTransaction(user.ID, TransactionFields{
			SetCategory:   true,
			CategoryID:    &cat.ID,
			Amount:        amountPtr("45.00"),
			Description:   strPtr("Weekly shop"),
			Date:          datePtr(t, "2024-03-15"),
			PaymentMethod: methodPtr(models.PaymentMethodCard),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected transaction ID")
		}
		if tx.Amount.String() != "45.00" {
			t.Errorf("expected amount 45.00, got %s", tx.Amount)
		}
		if tx.Date.String() != "2024-03-15" {
			t.Errorf("expected date 2024-03-15, got %s", tx.Date)
		}
		if tx.PaymentMethod != models.PaymentMethodCard {
			t.Errorf("expected card, got %s", tx.PaymentMethod)
		}
		if tx.Category == nil || tx.Category.Name != "Groceries" {
			t.Error("expected category details preloaded")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionFields{
			Amount: amountPtr("10"),
			Date:   datePtr(t, "2024-01-01"),
		})
		testutil.AssertNoError(t, err)

		if tx.PaymentMethod != models.PaymentMethodCash {
			t.Errorf("expected default payment method cash, got %s", tx.PaymentMethod)
		}
		if tx.CategoryID != nil || tx.Category != nil {
			t.Error("expected no category")
		}
		if tx.Description != "" {
			t.Errorf("expected empty description, got %q", tx.Description)
		}
		if tx.Receipt != nil {
			t.Error("expected no receipt")
		}
		if tx.Amount.String() != "10.00" {
			t.Errorf("expected amount 10.00, got %s", tx.Amount)
		}
	})

	t.Run("negative_amount_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionFields{Amount: amountPtr("-12.34"), Date: datePtr(t, "2024-01-01")})
		testutil.AssertNoError(t, err)
		if tx.Amount.String() != "-12.34" {
			t.Errorf("expected amount -12.34, got %s", tx.Amount)
		}
	})

	t.Run("amount_round_trip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		for _, amount := range []string{"1234.50", "0.01", "9999999999.99", "-9999999999.99"} {
			created, err := svc.CreateTransaction(user.ID, TransactionFields{Amount: amountPtr(amount), Date: datePtr(t, "2024-01-01")})
			testutil.AssertNoError(t, err)

			reloaded, err := svc.GetTransactionByID(user.ID, created.ID)
			testutil.AssertNoError(t, err)
			if reloaded.Amount.String() != amount {
				t.Errorf("expected %s after round trip, got %s", amount, reloaded.Amount)
			}
		}
	})

	t.Run("missing_required_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionFields{})
		testutil.AssertFieldError(t, err, "amount")
		testutil.AssertFieldError(t, err, "date")
	})

	t.Run("invalid_payment_method", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionFields{
			Amount:        amountPtr("1.00"),
			Date:          datePtr(t, "2024-01-01"),
			PaymentMethod: methodPtr("cheque"),
		})
		testutil.AssertFieldError(t, err, "payment_method")
	})

	t.Run("foreign_category_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

		_, err := svc.CreateTransaction(user.ID, TransactionFields{
			SetCategory: true,
			CategoryID:  &cat.ID,
			Amount:      amountPtr("1.00"),
			Date:        datePtr(t, "2024-01-01"),
		})
		testutil.AssertFieldError(t, err, "category")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no transaction stored, found %d", count)
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestTransaction(t, db, user.ID, nil, "5.00", "2024-01-01")

		tx, err := svc.GetTransactionByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)
		if tx.ID != created.ID {
			t.Errorf("expected ID %s, got %s", created.ID, tx.ID)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestTransaction(t, db, owner.ID, nil, "5.00", "2024-01-01")

		_, err := svc.GetTransactionByID(other.ID, created.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("default_ordering", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, nil, "1.00", "2024-01-10")
		testutil.CreateTestTransaction(t, db, user.ID, nil, "3.00", "2024-03-10")
		testutil.CreateTestTransaction(t, db, user.ID, nil, "2.00", "2024-02-10")

		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		want := []string{"3.00", "2.00", "1.00"}
		if got := amounts(result.Results); !reflect.DeepEqual(got, want) {
			t.Errorf("expected newest first %v, got %v", want, got)
		}
	})

	t.Run("order_by_amount_desc", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, nil, "20.00", "2024-01-10")
		testutil.CreateTestTransaction(t, db, user.ID, nil, "100.00", "2024-01-11")
		testutil.CreateTestTransaction(t, db, user.ID, nil, "-5.00", "2024-01-12")

		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Ordering: "-amount"})
		testutil.AssertNoError(t, err)

		want := []string{"100.00", "20.00", "-5.00"}
		if got := amounts(result.Results); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "1.00", "2024-01-05")
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "2.00", "2024-02-05")
		testutil.CreateTestTransaction(t, db, user.ID, nil, "3.00", "2024-02-05")
		card := testutil.CreateTestTransaction(t, db, user.ID, nil, "4.00", "2024-03-05")
		db.Model(card).Update("payment_method", models.PaymentMethodCard)

		tests := []struct {
			name   string
			filter TransactionFilter
			want   int64
		}{
			{name: "category", filter: TransactionFilter{CategoryID: &food.ID}, want: 2},
			{name: "uncategorized", filter: TransactionFilter{Uncategorized: true}, want: 2},
			{name: "payment_method", filter: TransactionFilter{PaymentMethod: methodPtr(models.PaymentMethodCard)}, want: 1},
			{name: "exact_date", filter: TransactionFilter{Date: datePtr(t, "2024-02-05")}, want: 2},
			{name: "from_date", filter: TransactionFilter{FromDate: datePtr(t, "2024-02-05")}, want: 3},
			{name: "to_date", filter: TransactionFilter{ToDate: datePtr(t, "2024-02-05")}, want: 3},
			{name: "date_range", filter: TransactionFilter{FromDate: datePtr(t, "2024-02-01"), ToDate: datePtr(t, "2024-02-28")}, want: 2},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, tt.filter)
				testutil.AssertNoError(t, err)
				if result.Count != tt.want {
					t.Errorf("expected %d transactions, got %d", tt.want, result.Count)
				}
			})
		}
	})

	t.Run("user_isolation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		bobCat := testutil.CreateTestCategory(t, db, bob.ID, models.CategoryTypeExpense)

		testutil.CreateTestTransaction(t, db, alice.ID, nil, "1.00", "2024-01-01")
		testutil.CreateTestTransaction(t, db, bob.ID, &bobCat.ID, "2.00", "2024-01-01")

		result, err := svc.GetUserTransactions(alice.ID, pagination.PageRequest{}, TransactionFilter{CategoryID: &bobCat.ID})
		testutil.AssertNoError(t, err)
		if result.Count != 0 {
			t.Errorf("filtering by another user's category must return nothing, got %d", result.Count)
		}

		result, err = svc.GetUserTransactions(alice.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.Count != 1 {
			t.Errorf("expected 1 transaction for alice, got %d", result.Count)
		}
	})

	t.Run("paginates_correctly", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 25; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, nil, "1.00", "2024-01-01")
		}

		first, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(first.Results) != pagination.DefaultPageSize {
			t.Errorf("expected %d results, got %d", pagination.DefaultPageSize, len(first.Results))
		}

		second, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(second.Results) != 5 {
			t.Errorf("expected 5 results on page 2, got %d", len(second.Results))
		}

		seen := make(map[string]bool)
		for _, tx := range append(first.Results, second.Results...) {
			if seen[tx.ID] {
				t.Fatalf("transaction %s appears on both pages", tx.ID)
			}
			seen[tx.ID] = true
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestTransaction(t, db, user.ID, nil, "5.00", "2024-01-01")

		updated, err := svc.UpdateTransaction(user.ID, created.ID, TransactionFields{
			Description: strPtr("Coffee"),
			Date:        datePtr(t, "2024-01-02"),
		})
		testutil.AssertNoError(t, err)

		if updated.Description != "Coffee" {
			t.Errorf("expected description Coffee, got %q", updated.Description)
		}
		if updated.Date.String() != "2024-01-02" {
			t.Errorf("expected date 2024-01-02, got %s", updated.Date)
		}
		if updated.Amount.String() != "5.00" {
			t.Errorf("expected amount unchanged, got %s", updated.Amount)
		}
	})

	t.Run("sets_and_clears_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		created := testutil.CreateTestTransaction(t, db, user.ID, nil, "5.00", "2024-01-01")

		updated, err := svc.UpdateTransaction(user.ID, created.ID, TransactionFields{SetCategory: true, CategoryID: &cat.ID})
		testutil.AssertNoError(t, err)
		if updated.CategoryID == nil || *updated.CategoryID != cat.ID {
			t.Fatal("expected category set")
		}

		updated, err = svc.UpdateTransaction(user.ID, created.ID, TransactionFields{Amount: amountPtr("6.00")})
		testutil.AssertNoError(t, err)
		if updated.CategoryID == nil {
			t.Fatal("category must be kept when not supplied")
		}

		updated, err = svc.UpdateTransaction(user.ID, created.ID, TransactionFields{SetCategory: true})
		testutil.AssertNoError(t, err)
		if updated.CategoryID != nil || updated.Category != nil {
			t.Error("expected category cleared")
		}
	})

	t.Run("foreign_category_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		foreign := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)
		created := testutil.CreateTestTransaction(t, db, user.ID, nil, "5.00", "2024-01-01")

		_, err := svc.UpdateTransaction(user.ID, created.ID, TransactionFields{SetCategory: true, CategoryID: &foreign.ID})
		testutil.AssertFieldError(t, err, "category")
	})

	t.Run("user_isolation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestTransaction(t, db, owner.ID, nil, "5.00", "2024-01-01")

		_, err := svc.UpdateTransaction(other.ID, created.ID, TransactionFields{Amount: amountPtr("999.00")})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		tx, _ := svc.GetTransactionByID(owner.ID, created.ID)
		if tx.Amount.String() != "5.00" {
			t.Errorf("other user's update must not apply, got %s", tx.Amount)
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestTransaction(t, db, user.ID, nil, "5.00", "2024-01-01")

		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, created.ID))

		_, err := svc.GetTransactionByID(user.ID, created.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestTransaction(t, db, owner.ID, nil, "5.00", "2024-01-01")

		err := svc.DeleteTransaction(other.ID, created.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		_, err = svc.GetTransactionByID(owner.ID, created.ID)
		testutil.AssertNoError(t, err)
	})
}

func TestGetSummary(t *testing.T) {
	t.Run("totals_by_category_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		salary := testutil.CreateTestCategoryNamed(t, db, user.ID, "Salary", models.CategoryTypeIncome)
		food := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food", models.CategoryTypeExpense)
		rent := testutil.CreateTestCategoryNamed(t, db, user.ID, "Rent", models.CategoryTypeExpense)

		testutil.CreateTestTransaction(t, db, user.ID, &salary.ID, "3000.00", "2024-03-01")
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "45.00", "2024-03-15")
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "55.50", "2024-03-20")
		testutil.CreateTestTransaction(t, db, user.ID, &rent.ID, "1200.00", "2024-03-02")
		testutil.CreateTestTransaction(t, db, user.ID, nil, "7.25", "2024-03-03")
		testutil.CreateTestTransaction(t, db, other.ID, nil, "1000.00", "2024-03-03")

		summary, err := svc.GetSummary(user.ID, SummaryPeriod{})
		testutil.AssertNoError(t, err)

		if summary.TotalIncome.String() != "3000.00" {
			t.Errorf("expected income 3000.00, got %s", summary.TotalIncome)
		}
		if summary.TotalExpense.String() != "1300.50" {
			t.Errorf("expected expense 1300.50, got %s", summary.TotalExpense)
		}
		if summary.NetBalance.String() != "1699.50" {
			t.Errorf("expected net 1699.50, got %s", summary.NetBalance)
		}
		if summary.IncomeCount != 1 || summary.ExpenseCount != 3 {
			t.Errorf("expected counts 1/3, got %d/%d", summary.IncomeCount, summary.ExpenseCount)
		}
		if summary.UncategorizedTotal.String() != "7.25" || summary.UncategorizedCount != 1 {
			t.Errorf("expected uncategorized 7.25 x1, got %s x%d", summary.UncategorizedTotal, summary.UncategorizedCount)
		}
		if len(summary.ByCategory) != 3 {
			t.Fatalf("expected 3 category rows, got %d", len(summary.ByCategory))
		}

		totals := make(map[string]string)
		for _, row := range summary.ByCategory {
			totals[row.Name] = row.Total.String()
		}
		if totals["Food"] != "100.50" {
			t.Errorf("expected Food total 100.50, got %s", totals["Food"])
		}
	})

	t.Run("month_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "10.00", "2024-02-29")
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "20.00", "2024-02-01")
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "40.00", "2024-03-01")
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "80.00", "2023-02-15")

		summary, err := svc.GetSummary(user.ID, SummaryPeriod{Month: intPtr(2), Year: intPtr(2024)})
		testutil.AssertNoError(t, err)

		if summary.TotalExpense.String() != "30.00" {
			t.Errorf("expected February expense 30.00, got %s", summary.TotalExpense)
		}
	})

	t.Run("year_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "10.00", "2024-01-01")
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "20.00", "2024-12-31")
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "40.00", "2025-01-01")

		summary, err := svc.GetSummary(user.ID, SummaryPeriod{Year: intPtr(2024)})
		testutil.AssertNoError(t, err)

		if summary.TotalExpense.String() != "30.00" {
			t.Errorf("expected 2024 expense 30.00, got %s", summary.TotalExpense)
		}
	})

	t.Run("empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		summary, err := svc.GetSummary(user.ID, SummaryPeriod{})
		testutil.AssertNoError(t, err)

		if !summary.NetBalance.IsZero() {
			t.Errorf("expected zero net balance, got %s", summary.NetBalance)
		}
		if summary.ByCategory == nil {
			t.Error("expected empty, non-nil category list")
		}
	})

	t.Run("invalid_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetSummary(user.ID, SummaryPeriod{Month: intPtr(13), Year: intPtr(2024)})
		testutil.AssertFieldError(t, err, "month")

		_, err = svc.GetSummary(user.ID, SummaryPeriod{Month: intPtr(3)})
		testutil.AssertFieldError(t, err, "year")
	})
}

func TestExportTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	for i := 0; i < 30; i++ {
		testutil.CreateTestTransaction(t, db, user.ID, &food.ID, "1.00", "2024-01-01")
	}
	testutil.CreateTestTransaction(t, db, user.ID, nil, "2.00", "2024-01-02")
	testutil.CreateTestTransaction(t, db, other.ID, nil, "3.00", "2024-01-02")

	all, err := svc.ExportTransactions(user.ID, TransactionFilter{})
	testutil.AssertNoError(t, err)
	if len(all) != 31 {
		t.Fatalf("expected 31 exported transactions, got %d", len(all))
	}
	if all[0].Amount.String() != "2.00" {
		t.Errorf("expected newest transaction first, got %s", all[0].Amount)
	}
	if all[1].Category == nil {
		t.Error("expected category details on exported rows")
	}

	filtered, err := svc.ExportTransactions(user.ID, TransactionFilter{Uncategorized: true})
	testutil.AssertNoError(t, err)
	if len(filtered) != 1 {
		t.Errorf("expected 1 uncategorized transaction, got %d", len(filtered))
	}
}
