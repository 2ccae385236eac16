package handlers

import (
	"math"
	"net/http"
	"testing"
)

func TestBalances(t *testing.T) {
	env := setupTestEnv(t)
	group, admin, adminToken := createTestGroup(t, env.db, "Flat 4B", "Alice")
	bob, _ := createTestMember(t, env.db, group, "Bob")
	carol, _ := createTestMember(t, env.db, group, "Carol")

	// Alice pays 30 for everyone, Bob pays 15 for Bob and Carol.
	resp := recordExpense(t, env, adminToken, 30, "Groceries", admin.ID.String(),
		[]string{admin.ID.String(), bob.ID.String(), carol.ID.String()})
	assertStatus(t, resp, http.StatusCreated)
	resp = recordExpense(t, env, adminToken, 15, "Taxi", bob.ID.String(),
		[]string{bob.ID.String(), carol.ID.String()})
	assertStatus(t, resp, http.StatusCreated)

	resp = performJSONRequest(t, env.app, http.MethodGet, "/api/balances", nil, authHeaders(adminToken))
	assertStatus(t, resp, http.StatusOK)

	body := decodeJSONMap(t, resp)
	items, ok := body["data"].([]any)
	if !ok || len(items) != 3 {
		t.Fatalf("expected 3 balances, got %v", body["data"])
	}

	byName := map[string]map[string]any{}
	var sum float64
	var last float64 = math.Inf(-1)
	for _, raw := range items {
		b := raw.(map[string]any)
		byName[b["name"].(string)] = b
		balance := b["balance"].(float64)
		if balance < last {
			t.Fatal("expected balances sorted ascending")
		}
		last = balance
		sum += balance
	}
	if math.Abs(sum) > 0.01 {
		t.Fatalf("balances must sum to zero, got %.2f", sum)
	}

	if got := byName["Alice"]["balance"].(float64); got != 20.00 {
		t.Fatalf("expected Alice at +20.00, got %.2f", got)
	}
	if got := byName["Bob"]["balance"].(float64); got != -2.50 {
		t.Fatalf("expected Bob at -2.50, got %.2f", got)
	}
	if got := byName["Carol"]["balance"].(float64); got != -17.50 {
		t.Fatalf("expected Carol at -17.50, got %.2f", got)
	}
}

func TestSettlements(t *testing.T) {
	env := setupTestEnv(t)
	group, admin, adminToken := createTestGroup(t, env.db, "Flat 4B", "Alice")
	bob, _ := createTestMember(t, env.db, group, "Bob")
	carol, _ := createTestMember(t, env.db, group, "Carol")

	t.Run("empty ledger yields no transfers", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodGet, "/api/settlements", nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)

		body := decodeJSONMap(t, resp)
		items, ok := body["data"].([]any)
		if !ok || len(items) != 0 {
			t.Fatalf("expected no transfers, got %v", body["data"])
		}
	})

	t.Run("plan routes debts to the creditor", func(t *testing.T) {
		resp := recordExpense(t, env, adminToken, 30, "Groceries", admin.ID.String(),
			[]string{admin.ID.String(), bob.ID.String(), carol.ID.String()})
		assertStatus(t, resp, http.StatusCreated)

		resp = performJSONRequest(t, env.app, http.MethodGet, "/api/settlements", nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)

		body := decodeJSONMap(t, resp)
		items, ok := body["data"].([]any)
		if !ok || len(items) != 2 {
			t.Fatalf("expected 2 transfers, got %v", body["data"])
		}
		for _, raw := range items {
			tr := raw.(map[string]any)
			if tr["toName"] != "Alice" {
				t.Fatalf("all transfers should flow to Alice, got %v", tr["toName"])
			}
			if tr["amount"].(float64) != 10.00 {
				t.Fatalf("expected 10.00 transfers, got %v", tr["amount"])
			}
		}
	})
}
