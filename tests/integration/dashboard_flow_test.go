package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestDashboardFlow_HealthScoreReflectsProfile(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "health@test.com", "password123")

	// A fresh account with no income or budgets sits at the neutral base
	rec := app.request("GET", "/api/v1/dashboard/health", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("health failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["score"].(float64) != 50 {
		t.Errorf("expected baseline score 50, got %v", result["score"])
	}
	if result["label"] != "fair" {
		t.Errorf("expected label fair, got %v", result["label"])
	}

	// Saving 20% of income maxes the savings component
	body := `{"monthly_income":500000,"savings_amount":100000}`
	rec = app.request("PUT", "/api/v1/users/me", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/dashboard/health", "", token)
	result = parseJSON(t, rec)
	if result["score"].(float64) != 80 {
		t.Errorf("expected score 80 with 20%% savings rate, got %v", result["score"])
	}
	if result["label"] != "excellent" {
		t.Errorf("expected label excellent, got %v", result["label"])
	}
}

func TestDashboardFlow_Summary(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "summary@test.com", "password123")
	categoryID := app.createCategory(t, token, "Groceries")

	app.createExpense(t, token, categoryID, 25000, midnightUTC(0))

	// An income entry should not count toward expenses
	body := fmt.Sprintf(`{"type":"income","amount":300000,"description":"Salary","date":%q}`,
		midnightUTC(0).Format(time.RFC3339))
	if rec := app.request("POST", "/api/v1/transactions", body, token); rec.Code != http.StatusCreated {
		t.Fatalf("create income failed: %d %s", rec.Code, rec.Body.String())
	}

	// One obligation due within two weeks
	body = fmt.Sprintf(`{"description":"Rent","amount":120000,"frequency":"monthly","start_date":%q}`,
		midnightUTC(7).Format(time.RFC3339))
	if rec := app.request("POST", "/api/v1/obligations", body, token); rec.Code != http.StatusCreated {
		t.Fatalf("create obligation failed: %d %s", rec.Code, rec.Body.String())
	}

	rec := app.request("GET", "/api/v1/dashboard/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["month_expenses"].(float64) != 25000 {
		t.Errorf("expected month_expenses 25000, got %v", result["month_expenses"])
	}
	if result["month_income"].(float64) != 300000 {
		t.Errorf("expected month_income 300000, got %v", result["month_income"])
	}
	upcoming := result["upcoming_obligations"].([]interface{})
	if len(upcoming) != 1 {
		t.Errorf("expected 1 upcoming obligation, got %d", len(upcoming))
	}
	top := result["top_categories"].([]interface{})
	if len(top) != 1 {
		t.Fatalf("expected 1 top category, got %d", len(top))
	}
	if top[0].(map[string]interface{})["category_name"] != "Groceries" {
		t.Errorf("expected Groceries, got %v", top[0].(map[string]interface{})["category_name"])
	}
}

func TestDashboardFlow_IncomeSources(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "income@test.com", "password123")

	// Yearly bonus plus a monthly salary
	body := `{"name":"Salary","amount":400000,"frequency":"monthly"}`
	rec := app.request("POST", "/api/v1/users/me/income-sources", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add income source failed: %d %s", rec.Code, rec.Body.String())
	}

	body = `{"name":"Bonus","amount":1200000,"frequency":"yearly"}`
	rec = app.request("POST", "/api/v1/users/me/income-sources", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add income source failed: %d %s", rec.Code, rec.Body.String())
	}
	created := parseJSON(t, rec)
	bonusID := int(created["income_source"].(map[string]interface{})["id"].(float64))

	// Monthly income is recomputed from the sources: 400000 + 1200000/12
	rec = app.request("GET", "/api/v1/auth/me", "", token)
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	if user["monthly_income"].(float64) != 500000 {
		t.Errorf("expected monthly_income 500000, got %v", user["monthly_income"])
	}

	// Removing the bonus drops it back down
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/users/me/income-sources/%d", bonusID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete income source failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/auth/me", "", token)
	result = parseJSON(t, rec)
	user = result["user"].(map[string]interface{})
	if user["monthly_income"].(float64) != 400000 {
		t.Errorf("expected monthly_income 400000, got %v", user["monthly_income"])
	}
}

func TestDashboardFlow_NotificationsFromScan(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "notify@test.com", "password123")

	body := fmt.Sprintf(`{"description":"Netflix","amount":1500,"frequency":"monthly","start_date":%q}`,
		midnightUTC(0).Format(time.RFC3339))
	if rec := app.request("POST", "/api/v1/obligations", body, token); rec.Code != http.StatusCreated {
		t.Fatalf("create obligation failed: %d %s", rec.Code, rec.Body.String())
	}

	if rec := app.request("POST", "/api/v1/obligations/scan", "", token); rec.Code != http.StatusOK {
		t.Fatalf("scan failed: %d %s", rec.Code, rec.Body.String())
	}

	rec := app.request("GET", "/api/v1/notifications", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("notifications failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	data := result["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 notification after scan, got %d", len(data))
	}
	notification := data[0].(map[string]interface{})
	if notification["type"] != "obligation_due" {
		t.Errorf("expected obligation_due, got %v", notification["type"])
	}
	notificationID := int(notification["id"].(float64))

	// Mark read, then the unread filter comes back empty
	rec = app.request("POST", fmt.Sprintf("/api/v1/notifications/%d/read", notificationID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark read failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/notifications?unread=true", "", token)
	result = parseJSON(t, rec)
	data = result["data"].([]interface{})
	if len(data) != 0 {
		t.Fatalf("expected 0 unread notifications, got %d", len(data))
	}
}
