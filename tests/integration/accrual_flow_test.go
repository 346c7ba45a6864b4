package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAccrualFlow_DailyRunWithCommissions(t *testing.T) {
	app := setupApp(t)

	// Three-level chain: top <- mid <- investor.
	_, top := app.registerUser(t, "top@accrual.com", "")
	_, mid := app.registerUser(t, "mid@accrual.com", top["referral_code"].(string))
	investorToken, investor := app.registerUser(t, "investor@accrual.com", mid["referral_code"].(string))

	app.fundUser(t, investor["id"].(string), 10000)
	planID := app.createPlan(t, 10000, 1000, 30)

	rec := app.request("POST", "/api/v1/investments", fmt.Sprintf(`{"plan_id":%q}`, planID), investorToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invest failed: %d %s", rec.Code, rec.Body.String())
	}

	adminToken := app.registerSuperadmin(t, "admin@accrual.com")
	rec = app.request("POST", "/api/v1/admin/accrual/run", "", adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("accrual run failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_credit_events"].(float64) != 1 {
		t.Errorf("expected 1 credit event, got %v", result["total_credit_events"])
	}

	// Daily return to the investor, commissions up the chain.
	if got := app.balance(t, investor["id"].(string)); got != 1000 {
		t.Errorf("investor: expected balance 1000, got %d", got)
	}
	if got := app.balance(t, mid["id"].(string)); got != 150 {
		t.Errorf("level 1 referrer: expected 150, got %d", got)
	}
	if got := app.balance(t, top["id"].(string)); got != 80 {
		t.Errorf("level 2 referrer: expected 80, got %d", got)
	}

	// A same-day rerun credits nothing further.
	rec = app.request("POST", "/api/v1/admin/accrual/run", "", adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("accrual rerun failed: %d %s", rec.Code, rec.Body.String())
	}
	rerun := parseJSON(t, rec)
	if rerun["total_credit_events"].(float64) != 0 {
		t.Errorf("rerun should credit nothing, got %v events", rerun["total_credit_events"])
	}
	if got := app.balance(t, investor["id"].(string)); got != 1000 {
		t.Errorf("investor balance changed on rerun: %d", got)
	}

	// The referral overview reflects the fan-out.
	midToken := app.loginUser(t, "mid@accrual.com", "password123")
	rec = app.request("GET", "/api/v1/referrals", "", midToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview failed: %d %s", rec.Code, rec.Body.String())
	}
	overview := parseJSON(t, rec)
	levels := overview["levels"].([]interface{})
	level1 := levels[0].(map[string]interface{})
	if level1["referrals"].(float64) != 1 {
		t.Errorf("expected 1 direct referral, got %v", level1["referrals"])
	}
	if level1["commission"].(float64) != 150 {
		t.Errorf("expected commission 150, got %v", level1["commission"])
	}
}

func TestAccrualFlow_RequiresSuperadmin(t *testing.T) {
	app := setupApp(t)

	token, _ := app.registerUser(t, "pleb@test.com", "")
	rec := app.request("POST", "/api/v1/admin/accrual/run", "", token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for regular user, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAccrualFlow_OpsTrigger(t *testing.T) {
	app := setupApp(t)

	token, user := app.registerUser(t, "ops@test.com", "")
	app.fundUser(t, user["id"].(string), 10000)
	planID := app.createPlan(t, 10000, 500, 30)
	rec := app.request("POST", "/api/v1/investments", fmt.Sprintf(`{"plan_id":%q}`, planID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invest failed: %d %s", rec.Code, rec.Body.String())
	}

	// Wrong key is rejected.
	req := app.request("POST", "/api/v1/ops/accrual/run", "", "")
	if req.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without API key, got %d", req.Code)
	}

	// The correct X-API-Key header triggers a run.
	rec = app.opsRequest("POST", "/api/v1/ops/accrual/run", opsAPIKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("ops accrual run failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := app.balance(t, user["id"].(string)); got != 500 {
		t.Errorf("expected balance 500 after ops run, got %d", got)
	}
}
