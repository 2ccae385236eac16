package handlers

import (
	"net/http"
	"testing"

	"github.com/splitpot/backend/internal/models"
)

func TestGetGroup(t *testing.T) {
	env := setupTestEnv(t)
	group, _, token := createTestGroup(t, env.db, "Flat 4B", "Alice")

	resp := performJSONRequest(t, env.app, http.MethodGet, "/api/group", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)

	data := dataMap(t, decodeJSONMap(t, resp))
	if data["name"] != "Flat 4B" || data["code"] != group.Code {
		t.Fatalf("unexpected group payload: %+v", data)
	}
}

func TestUpdateGroup(t *testing.T) {
	env := setupTestEnv(t)
	group, admin, adminToken := createTestGroup(t, env.db, "Flat 4B", "Alice")
	bob, bobToken := createTestMember(t, env.db, group, "Bob")

	t.Run("non-admin is refused", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPatch, "/api/group", map[string]any{
			"name": "New Name",
		}, authHeaders(bobToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("renames at any time", func(t *testing.T) {
		resp := recordExpense(t, env, adminToken, 20, "Dinner", admin.ID.String(),
			[]string{admin.ID.String(), bob.ID.String()})
		assertStatus(t, resp, http.StatusCreated)

		resp = performJSONRequest(t, env.app, http.MethodPatch, "/api/group", map[string]any{
			"name": "Flat 5C",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["name"] != "Flat 5C" {
			t.Fatalf("expected renamed group, got %v", data["name"])
		}
	})

	t.Run("currency change is refused while unsettled", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPatch, "/api/group", map[string]any{
			"currency": "$",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusConflict)
	})

	t.Run("currency change succeeds once settled", func(t *testing.T) {
		// Bob repays his 10.00 share, zeroing both balances.
		desc := models.SettlementPrefix + " Bob → Alice"
		resp := recordExpense(t, env, adminToken, 10, desc, bob.ID.String(),
			[]string{admin.ID.String()})
		assertStatus(t, resp, http.StatusCreated)

		resp = performJSONRequest(t, env.app, http.MethodPatch, "/api/group", map[string]any{
			"currency": "$",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["currency"] != "$" {
			t.Fatalf("expected currency $, got %v", data["currency"])
		}
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPatch, "/api/group", map[string]any{}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusBadRequest)
	})
}

func TestListMembers(t *testing.T) {
	env := setupTestEnv(t)
	group, _, token := createTestGroup(t, env.db, "Flat 4B", "Zoe")
	createTestMember(t, env.db, group, "bob")
	createTestMember(t, env.db, group, "Alice")

	resp := performJSONRequest(t, env.app, http.MethodGet, "/api/group/members", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)

	body := decodeJSONMap(t, resp)
	items, ok := body["data"].([]any)
	if !ok || len(items) != 3 {
		t.Fatalf("expected 3 members, got %v", body["data"])
	}

	names := make([]string, len(items))
	for i, raw := range items {
		names[i] = raw.(map[string]any)["name"].(string)
	}
	if names[0] != "Alice" || names[1] != "bob" || names[2] != "Zoe" {
		t.Fatalf("expected case-insensitive alphabetical order, got %v", names)
	}
}

func TestRemoveMember(t *testing.T) {
	env := setupTestEnv(t)
	group, admin, adminToken := createTestGroup(t, env.db, "Flat 4B", "Alice")
	bob, bobToken := createTestMember(t, env.db, group, "Bob")
	carol, _ := createTestMember(t, env.db, group, "Carol")

	// Bob paid one expense and owes a share of another.
	resp := recordExpense(t, env, adminToken, 30, "Paid by Bob", bob.ID.String(),
		[]string{bob.ID.String(), carol.ID.String()})
	assertStatus(t, resp, http.StatusCreated)
	resp = recordExpense(t, env, adminToken, 20, "Paid by Alice", admin.ID.String(),
		[]string{admin.ID.String(), bob.ID.String()})
	assertStatus(t, resp, http.StatusCreated)

	t.Run("non-admin is refused", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodDelete, "/api/group/members/"+carol.ID.String(), nil, authHeaders(bobToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("admin cannot remove themselves", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodDelete, "/api/group/members/"+admin.ID.String(), nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("removal cascades expenses and splits", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodDelete, "/api/group/members/"+bob.ID.String(), nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)

		var memberCount int64
		env.db.Model(&models.Member{}).Where("id = ?", bob.ID).Count(&memberCount)
		if memberCount != 0 {
			t.Fatal("member row must be removed")
		}

		var paidCount int64
		env.db.Model(&models.Expense{}).Where("paid_by_id = ?", bob.ID).Count(&paidCount)
		if paidCount != 0 {
			t.Fatal("expenses paid by the removed member must be removed")
		}

		var splitCount int64
		env.db.Model(&models.ExpenseSplit{}).Where("member_id = ?", bob.ID).Count(&splitCount)
		if splitCount != 0 {
			t.Fatal("splits of the removed member must be removed")
		}

		// Alice's own expense survives with only her split remaining.
		var remaining int64
		env.db.Model(&models.Expense{}).Count(&remaining)
		if remaining != 1 {
			t.Fatalf("expected 1 surviving expense, got %d", remaining)
		}
	})
}
