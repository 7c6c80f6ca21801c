package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

// firstOfMonthUTC returns the first day of the current month at midnight UTC.
func firstOfMonthUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (app *testApp) createExpense(t *testing.T, token string, categoryID float64, amount int64, date time.Time) {
	t.Helper()
	body := fmt.Sprintf(`{"category_id":%d,"amount":%d,"description":"expense","date":%q}`,
		int(categoryID), amount, date.Format(time.RFC3339))
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestBudgetFlow_CreateAndTrackProgress(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "budget@test.com", "password123")
	categoryID := app.createCategory(t, token, "Groceries")

	// Spend before the budget exists; spend is derived, not accumulated
	app.createExpense(t, token, categoryID, 12000, midnightUTC(0))
	app.createExpense(t, token, categoryID, 8000, midnightUTC(0))

	body := fmt.Sprintf(`{"category_id":%d,"limit":50000,"month":%q}`,
		int(categoryID), firstOfMonthUTC().Format(time.RFC3339))
	rec := app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	created := parseJSON(t, rec)
	budgetID := int(created["budget"].(map[string]interface{})["id"].(float64))

	// Progress reflects the pre-existing spend
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%d", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get budget failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	progress := result["progress"].(map[string]interface{})
	if progress["spent"].(float64) != 20000 {
		t.Errorf("expected spent 20000, got %v", progress["spent"])
	}
	if progress["remaining"].(float64) != 30000 {
		t.Errorf("expected remaining 30000, got %v", progress["remaining"])
	}

	// More spend moves the needle without any budget write
	app.createExpense(t, token, categoryID, 10000, midnightUTC(0))

	rec = app.request("GET", "/api/v1/budgets/overview", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview failed: %d %s", rec.Code, rec.Body.String())
	}
	overview := parseJSON(t, rec)
	if overview["total_spent"].(float64) != 30000 {
		t.Errorf("expected total_spent 30000, got %v", overview["total_spent"])
	}
	if overview["total_limit"].(float64) != 50000 {
		t.Errorf("expected total_limit 50000, got %v", overview["total_limit"])
	}
}

func TestBudgetFlow_DuplicateRejected(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "dupbudget@test.com", "password123")
	categoryID := app.createCategory(t, token, "Dining")

	body := fmt.Sprintf(`{"category_id":%d,"limit":30000,"month":%q}`,
		int(categoryID), firstOfMonthUTC().Format(time.RFC3339))
	if rec := app.request("POST", "/api/v1/budgets", body, token); rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}

	rec := app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate budget, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "DUPLICATE_BUDGET" {
		t.Errorf("expected DUPLICATE_BUDGET, got %v", errObj["code"])
	}
}

func TestBudgetFlow_AlertsAndRecommendations(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "alerts@test.com", "password123")
	categoryID := app.createCategory(t, token, "Shopping")

	body := fmt.Sprintf(`{"category_id":%d,"limit":10000,"month":%q}`,
		int(categoryID), firstOfMonthUTC().Format(time.RFC3339))
	if rec := app.request("POST", "/api/v1/budgets", body, token); rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}

	// Blow past the limit this month, with history showing the limit is
	// chronically too small
	app.createExpense(t, token, categoryID, 12000, midnightUTC(0))
	app.createExpense(t, token, categoryID, 15000, midnightUTC(-30))
	app.createExpense(t, token, categoryID, 15000, midnightUTC(-60))

	rec := app.request("GET", "/api/v1/budgets/alerts", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("alerts failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	alerts := result["alerts"].([]interface{})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	alert := alerts[0].(map[string]interface{})
	if alert["level"] != "danger" {
		t.Errorf("expected danger alert, got %v", alert["level"])
	}

	rec = app.request("GET", "/api/v1/budgets/recommendations", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendations failed: %d %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	recommendations := result["recommendations"].([]interface{})
	if len(recommendations) == 0 {
		t.Fatal("expected at least one recommendation for an over-budget category")
	}
}

func TestBudgetFlow_TrendAndBreakdown(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "trend@test.com", "password123")
	groceries := app.createCategory(t, token, "Groceries")
	transport := app.createCategory(t, token, "Transport")

	app.createExpense(t, token, groceries, 30000, midnightUTC(0))
	app.createExpense(t, token, transport, 10000, midnightUTC(0))

	rec := app.request("GET", "/api/v1/budgets/trend?months=3", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("trend failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	trend := result["trend"].([]interface{})
	if len(trend) != 3 {
		t.Fatalf("expected 3 trend points, got %d", len(trend))
	}
	latest := trend[2].(map[string]interface{})
	if latest["total"].(float64) != 40000 {
		t.Errorf("expected latest month total 40000, got %v", latest["total"])
	}

	rec = app.request("GET", "/api/v1/budgets/breakdown", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("breakdown failed: %d %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	breakdown := result["breakdown"].([]interface{})
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 breakdown slices, got %d", len(breakdown))
	}
	top := breakdown[0].(map[string]interface{})
	if top["category_name"] != "Groceries" {
		t.Errorf("expected Groceries as top slice, got %v", top["category_name"])
	}
	if top["percentage"].(float64) != 75 {
		t.Errorf("expected 75%% share, got %v", top["percentage"])
	}
}

func TestBudgetFlow_InvalidMonthsParam(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "badtrend@test.com", "password123")

	rec := app.request("GET", "/api/v1/budgets/trend?months=99", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for months=99, got %d", rec.Code)
	}
}
