package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/diamondbase/internal/db"
	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/metrics"
	"github.com/erazemk/diamondbase/internal/model"
	"github.com/erazemk/diamondbase/internal/store"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "password123"
	oneEther      = "1000000000000000000"
	twoEther      = "2000000000000000000"
	tenEther      = "10000000000000000000"
)

var deployer = model.Address("0x00000000000000000000000000000000000000d0")

type testServer struct {
	*httptest.Server
	ownerToken string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	m := metrics.New()
	l := ledger.New(database, ledger.WithMetrics(m))
	router := NewRouter(l, database, testJWTSecret, m)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create and deploy the owner account.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if _, err := store.CreateAccount(ctx, database, deployer, string(hash), nil); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := l.Deploy(ctx, deployer); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	return &testServer{Server: server, ownerToken: login(t, server.URL, deployer, testPassword)}
}

func login(t *testing.T, base string, address model.Address, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"address": string(address), "password": password})
	resp, err := http.Post(base+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends a request and decodes the JSON response into out, if given.
func do(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

// openAccount provisions an account with balance, enrols it in role (if set)
// and returns its address and a session token.
func (s *testServer) openAccount(t *testing.T, role model.Role, balance string) (model.Address, string) {
	t.Helper()
	var created accountResponse
	status := do(t, "POST", s.URL+"/api/accounts", s.ownerToken,
		map[string]string{"password": testPassword, "balance": balance}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 opening account, got %d", status)
	}

	if role != "" {
		status = do(t, "POST", s.URL+"/api/roles/"+string(role)+"/members", s.ownerToken,
			map[string]string{"account": string(created.Address)}, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200 adding %s, got %d", role, status)
		}
	}

	return created.Address, login(t, s.URL, created.Address, testPassword)
}

func (s *testServer) transition(t *testing.T, token string, upc int64, op ledger.Operation, body any) (int, map[string]any) {
	t.Helper()
	var out map[string]any
	status := do(t, "POST", fmt.Sprintf("%s/api/items/%d/%s", s.URL, upc, op), token, body, &out)
	return status, out
}

func (s *testServer) mine(t *testing.T, token string, upc int64) {
	t.Helper()
	status := do(t, "POST", s.URL+"/api/items", token, map[string]any{
		"upc":       upc,
		"mine_name": "John Doe Mine",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 mining %d, got %d", upc, status)
	}
}

func (s *testServer) balance(t *testing.T, address model.Address) string {
	t.Helper()
	var account accountResponse
	if status := do(t, "GET", s.URL+"/api/accounts/"+string(address), "", nil, &account); status != http.StatusOK {
		t.Fatalf("expected 200 reading account, got %d", status)
	}
	return account.Balance
}

func TestLoginEndpoint(t *testing.T) {
	server := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"address": string(deployer), "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Unknown address.
	body, _ = json.Marshal(map[string]string{"address": string(model.ZeroAddress), "password": testPassword})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown address, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for public read, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	status := do(t, "POST", server.URL+"/api/items", "", map[string]any{"upc": 1}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated mine, got %d", status)
	}

	status = do(t, "POST", server.URL+"/api/items/1/sellItem", "not-a-token", nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server := setupTestServer(t)

	if status := do(t, "POST", server.URL+"/api/auth/logout", server.ownerToken, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", status)
	}

	status := do(t, "POST", server.URL+"/api/roles/Miner/members", server.ownerToken,
		map[string]string{"account": "0x00000000000000000000000000000000000000e1"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}
}

func TestChangePassword(t *testing.T) {
	server := setupTestServer(t)

	status := do(t, "PUT", server.URL+"/api/auth/password", server.ownerToken, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "new-password",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", status)
	}

	status = do(t, "PUT", server.URL+"/api/auth/password", server.ownerToken, map[string]string{
		"current_password": testPassword,
		"new_password":     "new-password",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	login(t, server.URL, deployer, "new-password")
}

func TestLifecycleAPIFlow(t *testing.T) {
	server := setupTestServer(t)

	manufacturer, manufacturerToken := server.openAccount(t, model.RoleManufacturer, tenEther)
	masterjeweler, masterjewelerToken := server.openAccount(t, model.RoleMasterjeweler, "")
	retailer, retailerToken := server.openAccount(t, model.RoleRetailer, "")
	_, customerToken := server.openAccount(t, model.RoleCustomer, tenEther)

	// The deployer is a Miner.
	server.mine(t, server.ownerToken, 1)

	steps := []struct {
		token string
		op    ledger.Operation
		body  map[string]string
	}{
		{server.ownerToken, ledger.OpSellItem, map[string]string{"price": oneEther}},
		{manufacturerToken, ledger.OpBuyItem, map[string]string{"value": oneEther}},
		{server.ownerToken, ledger.OpSendItem, nil},
		{manufacturerToken, ledger.OpReceiveItem, nil},
		{manufacturerToken, ledger.OpSendItemToCut, map[string]string{"target": string(masterjeweler)}},
		{masterjewelerToken, ledger.OpReceiveItemToCut, nil},
		{masterjewelerToken, ledger.OpCutItem, nil},
		{masterjewelerToken, ledger.OpReturnCutItem, nil},
		{manufacturerToken, ledger.OpReceiveCutItem, nil},
		{manufacturerToken, ledger.OpMarkForPurchasing, map[string]string{"price": twoEther}},
		{manufacturerToken, ledger.OpSendItemForPurchasing, map[string]string{"target": string(retailer)}},
		{retailerToken, ledger.OpReceiveItemForPurchasing, nil},
		{retailerToken, ledger.OpPutUpForPurchasing, nil},
		{customerToken, ledger.OpPurchaseItem, map[string]string{"value": twoEther}},
		{customerToken, ledger.OpFetchItem, nil},
	}

	for i, step := range steps {
		var body any
		if step.body != nil {
			body = step.body
		}
		status, out := server.transition(t, step.token, 1, step.op, body)
		if status != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d (%v)", step.op, status, out)
		}
		if want := model.State(i + 1).String(); out["name"] != want {
			t.Errorf("%s: expected event %s, got %v", step.op, want, out["name"])
		}
	}

	var two map[string]any
	if status := do(t, "GET", server.URL+"/api/items/1/buffer/two", "", nil, &two); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if two["state"] != float64(model.StateFetched) {
		t.Errorf("expected state %d, got %v", model.StateFetched, two["state"])
	}

	if got := server.balance(t, deployer); got != oneEther {
		t.Errorf("expected miner balance %s, got %s", oneEther, got)
	}
	if got := server.balance(t, retailer); got != twoEther {
		t.Errorf("expected retailer balance %s, got %s", twoEther, got)
	}
	if got := server.balance(t, manufacturer); got != "9000000000000000000" {
		t.Errorf("expected manufacturer balance 9 ether, got %s", got)
	}

	var events []model.Event
	do(t, "GET", server.URL+"/api/items/1/events", "", nil, &events)
	if len(events) != model.NumStates {
		t.Errorf("expected %d events, got %d", model.NumStates, len(events))
	}
}

func TestTransitionErrors(t *testing.T) {
	server := setupTestServer(t)
	_, manufacturerToken := server.openAccount(t, model.RoleManufacturer, oneEther)
	_, strangerToken := server.openAccount(t, "", oneEther)
	server.mine(t, server.ownerToken, 1)

	tests := []struct {
		name   string
		token  string
		op     ledger.Operation
		body   any
		status int
		kind   string
	}{
		{"wrong state", manufacturerToken, ledger.OpBuyItem, map[string]string{"value": oneEther}, http.StatusConflict, "wrong_state"},
		{"role required", strangerToken, ledger.OpSellItem, map[string]string{"price": oneEther}, http.StatusForbidden, "role_required"},
		{"unknown operation", server.ownerToken, ledger.Operation("polishItem"), nil, http.StatusBadRequest, "invalid_argument"},
		{"missing price", server.ownerToken, ledger.OpSellItem, nil, http.StatusBadRequest, "invalid_argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := server.transition(t, tt.token, 1, tt.op, tt.body)
			if status != tt.status {
				t.Errorf("expected %d, got %d (%v)", tt.status, status, out)
			}
			if out["kind"] != tt.kind {
				t.Errorf("expected kind %s, got %v", tt.kind, out["kind"])
			}
		})
	}

	status, _ := server.transition(t, server.ownerToken, 1, ledger.OpSellItem, map[string]string{"price": "-5"})
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for negative price, got %d", status)
	}

	// Underpayment.
	if status, out := server.transition(t, server.ownerToken, 1, ledger.OpSellItem, map[string]string{"price": twoEther}); status != http.StatusOK {
		t.Fatalf("sellItem: %d (%v)", status, out)
	}
	status, out := server.transition(t, manufacturerToken, 1, ledger.OpBuyItem, map[string]string{"value": oneEther})
	if status != http.StatusPaymentRequired || out["kind"] != "insufficient_payment" {
		t.Errorf("expected 402 insufficient_payment, got %d (%v)", status, out)
	}
}

func TestRoleEndpoints(t *testing.T) {
	server := setupTestServer(t)
	customer, customerToken := server.openAccount(t, model.RoleCustomer, "")

	var check map[string]bool
	do(t, "GET", server.URL+"/api/roles/customer/members/"+string(customer), "", nil, &check)
	if !check["member"] {
		t.Error("expected customer membership")
	}

	// Only the owner may add members.
	status := do(t, "POST", server.URL+"/api/roles/Retailer/members", customerToken,
		map[string]string{"account": string(customer)}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner add, got %d", status)
	}

	if status := do(t, "DELETE", server.URL+"/api/roles/Customer/members/me", customerToken, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 on renounce, got %d", status)
	}

	var members []model.Address
	do(t, "GET", server.URL+"/api/roles/Customer/members", "", nil, &members)
	if len(members) != 0 {
		t.Errorf("expected no customers, got %v", members)
	}

	if status := do(t, "GET", server.URL+"/api/roles/Jeweller/members", "", nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown role, got %d", status)
	}
}

func TestHashEndpoints(t *testing.T) {
	server := setupTestServer(t)
	_, strangerToken := server.openAccount(t, "", "")
	server.mine(t, server.ownerToken, 1)

	var out map[string]string
	do(t, "GET", server.URL+"/api/items/404/hash", "", nil, &out)
	if out["hash"] != "" {
		t.Errorf("expected empty hash for unknown item, got %q", out["hash"])
	}

	do(t, "GET", server.URL+"/api/items/1/hash", "", nil, &out)
	if out["hash"] != model.NoImageHash {
		t.Errorf("expected %q, got %q", model.NoImageHash, out["hash"])
	}

	status := do(t, "PUT", server.URL+"/api/items/1/hash", strangerToken, map[string]string{"hash": "Qm"}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for stranger upload, got %d", status)
	}

	if status := do(t, "PUT", server.URL+"/api/items/1/hash", server.ownerToken, map[string]string{"hash": "Qm"}, nil); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	do(t, "GET", server.URL+"/api/items/1/hash", "", nil, &out)
	if out["hash"] != "Qm" {
		t.Errorf("expected Qm, got %q", out["hash"])
	}
}

func TestOwnershipEndpoints(t *testing.T) {
	server := setupTestServer(t)
	successor, successorToken := server.openAccount(t, "", "")

	var out map[string]model.Address
	do(t, "GET", server.URL+"/api/owner", "", nil, &out)
	if out["owner"] != deployer {
		t.Fatalf("expected owner %s, got %s", deployer, out["owner"])
	}

	status := do(t, "PUT", server.URL+"/api/owner", successorToken, map[string]string{"new_owner": string(successor)}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner transfer, got %d", status)
	}

	status = do(t, "PUT", server.URL+"/api/owner", server.ownerToken, map[string]string{"new_owner": string(successor)}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on transfer, got %d", status)
	}

	if status := do(t, "POST", server.URL+"/api/destroy", successorToken, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 on destroy, got %d", status)
	}

	if status := do(t, "GET", server.URL+"/api/owner", "", nil, nil); status != http.StatusGone {
		t.Errorf("expected 410 after destroy, got %d", status)
	}
	if status := do(t, "GET", server.URL+"/api/items/1/buffer/one", "", nil, nil); status != http.StatusGone {
		t.Errorf("expected 410 after destroy, got %d", status)
	}
}

func TestAccountEndpoints(t *testing.T) {
	server := setupTestServer(t)
	payer, payerToken := server.openAccount(t, "", twoEther)
	payee, _ := server.openAccount(t, "", "")

	status := do(t, "POST", server.URL+"/api/transfers", payerToken,
		map[string]string{"to": string(payee), "amount": oneEther}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on transfer, got %d", status)
	}
	if got := server.balance(t, payee); got != oneEther {
		t.Errorf("expected payee balance %s, got %s", oneEther, got)
	}

	status = do(t, "POST", server.URL+"/api/transfers", payerToken,
		map[string]string{"to": string(payee), "amount": twoEther}, nil)
	if status != http.StatusPaymentRequired {
		t.Errorf("expected 402 for overdraft, got %d", status)
	}

	var accounts []accountResponse
	if status := do(t, "GET", server.URL+"/api/accounts", server.ownerToken, nil, &accounts); status != http.StatusOK {
		t.Fatalf("expected 200 listing accounts, got %d", status)
	}
	if len(accounts) != 3 {
		t.Errorf("expected 3 accounts, got %d", len(accounts))
	}

	if status := do(t, "GET", server.URL+"/api/accounts", payerToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 listing accounts as non-owner, got %d", status)
	}

	if status := do(t, "GET", server.URL+"/api/accounts/"+string(payer), "", nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 reading account, got %d", status)
	}
	if status := do(t, "GET", server.URL+"/api/accounts/nobody", "", nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed address, got %d", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	database := db.NewTestDB(t)
	m := metrics.New()
	l := ledger.New(database, ledger.WithMetrics(m))
	server := httptest.NewServer(NewRouter(l, database, testJWTSecret, m))
	t.Cleanup(server.Close)

	if err := l.Deploy(context.Background(), deployer); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `diamondbase_operations_applied_total{operation="deploy"} 1`) {
		t.Errorf("expected deploy counter in metrics output")
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ledger.ErrWrongState, http.StatusConflict},
		{ledger.ErrDuplicateItem, http.StatusConflict},
		{ledger.ErrRoleRequired, http.StatusForbidden},
		{ledger.ErrNotAuthorized, http.StatusForbidden},
		{ledger.ErrNotOwner, http.StatusForbidden},
		{ledger.ErrInsufficientPayment, http.StatusPaymentRequired},
		{ledger.ErrInsufficientFunds, http.StatusPaymentRequired},
		{ledger.ErrDestroyed, http.StatusGone},
		{ledger.ErrInvalidArgument, http.StatusBadRequest},
		{io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.status {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.status, got)
		}
	}
}
