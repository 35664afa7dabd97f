package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"

	"ballot-box/pkg/common/config"
	"ballot-box/pkg/core/auth"
	"ballot-box/pkg/core/store"
	"ballot-box/pkg/core/voting"
	"ballot-box/pkg/web/router"
)

func newTestApp(t *testing.T, env string) *server.Hertz {
	t.Helper()

	cfg := &config.Config{
		Env: env,
		JWT: config.JWTConfig{Secret: "test-secret"},
		CORS: config.CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
		},
	}
	svc := voting.New(store.NewMemoryStore(), auth.NewTokenIssuer(cfg.JWT.Secret), cfg.Env)

	h := server.New()
	if err := router.RegisterAPIs(h, cfg, svc, nil); err != nil {
		t.Fatalf("RegisterAPIs failed: %v", err)
	}
	return h
}

type gqlResult struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func doGraphQL(t *testing.T, h *server.Hertz, query, token string) (int, gqlResult) {
	t.Helper()

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		t.Fatalf("marshal query: %v", err)
	}

	headers := []ut.Header{{Key: "Content-Type", Value: "application/json"}}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}

	w := ut.PerformRequest(h.Engine, "POST", "/graphql",
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		headers...,
	)
	resp := w.Result()

	var result gqlResult
	if resp.StatusCode() == 200 {
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			t.Fatalf("decode response %q: %v", resp.Body(), err)
		}
	}
	return resp.StatusCode(), result
}

func errorCode(result gqlResult) string {
	if len(result.Errors) == 0 {
		return ""
	}
	code, _ := result.Errors[0].Extensions["code"].(string)
	return code
}

func TestHealthRoute(t *testing.T) {
	h := newTestApp(t, config.EnvDevelopment)

	w := ut.PerformRequest(h.Engine, "GET", "/health", nil)
	if w.Result().StatusCode() != 200 {
		t.Fatalf("expected 200, got %d", w.Result().StatusCode())
	}
}

func TestGraphQLRequiresQuery(t *testing.T) {
	h := newTestApp(t, config.EnvDevelopment)

	status, _ := doGraphQL(t, h, "", "")
	if status != 400 {
		t.Fatalf("empty query: expected 400, got %d", status)
	}
}

func TestRejectsGarbageToken(t *testing.T) {
	h := newTestApp(t, config.EnvDevelopment)

	status, _ := doGraphQL(t, h, "{ allCandidatesCount }", "garbage")
	if status != 401 {
		t.Fatalf("garbage token: expected 401, got %d", status)
	}
}

func TestAnonymousLoggedInUserIsNull(t *testing.T) {
	h := newTestApp(t, config.EnvDevelopment)

	status, result := doGraphQL(t, h, "{ loggedInUser { username } }", "")
	if status != 200 || len(result.Errors) != 0 {
		t.Fatalf("status %d, errors %v", status, result.Errors)
	}
	if string(result.Data["loggedInUser"]) != "null" {
		t.Errorf("loggedInUser = %s, want null", result.Data["loggedInUser"])
	}
}

func TestResetForbiddenOutsideTestMode(t *testing.T) {
	h := newTestApp(t, config.EnvDevelopment)

	_, result := doGraphQL(t, h, `mutation { resetAllDocuments }`, "")
	if errorCode(result) != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got errors %v", result.Errors)
	}
}

func TestResetInTestMode(t *testing.T) {
	h := newTestApp(t, config.EnvTest)

	_, result := doGraphQL(t, h, `mutation { resetAllDocuments }`, "")
	if len(result.Errors) != 0 {
		t.Fatalf("reset in test mode failed: %v", result.Errors)
	}
}

func TestInvalidRegistrationOverHTTP(t *testing.T) {
	h := newTestApp(t, config.EnvDevelopment)

	_, result := doGraphQL(t, h, `mutation {
		createUser(username: "alice", password: "pw", passwordConfirmation: "pw") { username }
	}`, "")
	if errorCode(result) != "BAD_USER_INPUT" {
		t.Fatalf("expected BAD_USER_INPUT, got errors %v", result.Errors)
	}
}

func TestFullScenarioOverHTTP(t *testing.T) {
	h := newTestApp(t, config.EnvDevelopment)

	// Register.
	_, result := doGraphQL(t, h, `mutation {
		createUser(username: "alice", password: "pass12", passwordConfirmation: "pass12") { id username }
	}`, "")
	if len(result.Errors) != 0 {
		t.Fatalf("createUser: %v", result.Errors)
	}

	// Login, capture the token.
	_, result = doGraphQL(t, h, `mutation {
		login(username: "alice", password: "pass12") { token user { username candidate { id } } }
	}`, "")
	if len(result.Errors) != 0 {
		t.Fatalf("login: %v", result.Errors)
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			Username  string           `json:"username"`
			Candidate *json.RawMessage `json:"candidate"`
		} `json:"user"`
	}
	if err := json.Unmarshal(result.Data["login"], &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Token == "" || login.User.Username != "alice" {
		t.Fatalf("unexpected login payload: %+v", login)
	}

	// Identity is resolvable through the bearer header.
	_, result = doGraphQL(t, h, `{ loggedInUser { username } }`, login.Token)
	if string(result.Data["loggedInUser"]) == "null" {
		t.Fatal("loggedInUser null for a valid token")
	}

	// Add a candidate.
	_, result = doGraphQL(t, h, `mutation {
		addCandidate(candidateLastName: "Smith", candidateFirstName: "Jane", country: "France", politicalOrientation: "center") { id votes }
	}`, login.Token)
	if len(result.Errors) != 0 {
		t.Fatalf("addCandidate: %v", result.Errors)
	}
	var added struct {
		ID    string `json:"id"`
		Votes int    `json:"votes"`
	}
	if err := json.Unmarshal(result.Data["addCandidate"], &added); err != nil {
		t.Fatalf("decode addCandidate: %v", err)
	}
	if added.Votes != 0 {
		t.Fatalf("new candidate votes = %d, want 0", added.Votes)
	}

	// Second candidate for the same user is a domain error.
	_, result = doGraphQL(t, h, `mutation {
		addCandidate(candidateLastName: "Jones", candidateFirstName: "John", country: "Spain", politicalOrientation: "left") { id }
	}`, login.Token)
	if errorCode(result) != "DOMAIN_ERROR" {
		t.Fatalf("second addCandidate: expected DOMAIN_ERROR, got %v", result.Errors)
	}

	// Vote three times, anonymously.
	voteQuery := fmt.Sprintf(`mutation { voteCandidate(id: %q) { votes } }`, added.ID)
	var votes struct {
		Votes int `json:"votes"`
	}
	for i := 1; i <= 3; i++ {
		_, result = doGraphQL(t, h, voteQuery, "")
		if len(result.Errors) != 0 {
			t.Fatalf("vote %d: %v", i, result.Errors)
		}
		if err := json.Unmarshal(result.Data["voteCandidate"], &votes); err != nil {
			t.Fatalf("decode voteCandidate: %v", err)
		}
		if votes.Votes != i {
			t.Fatalf("votes = %d, want %d", votes.Votes, i)
		}
	}

	// Queries see the candidate.
	_, result = doGraphQL(t, h, `{ allCandidatesCount }`, "")
	if string(result.Data["allCandidatesCount"]) != "1" {
		t.Fatalf("allCandidatesCount = %s, want 1", result.Data["allCandidatesCount"])
	}
	_, result = doGraphQL(t, h, `{ allCandidates(candidateLastName: "Smith") { lastName votes } }`, "")
	var candidates []struct {
		LastName string `json:"lastName"`
		Votes    int    `json:"votes"`
	}
	if err := json.Unmarshal(result.Data["allCandidates"], &candidates); err != nil {
		t.Fatalf("decode allCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Votes != 3 {
		t.Fatalf("allCandidates = %+v", candidates)
	}

	// Delete, then the current user shows no candidate.
	deleteQuery := fmt.Sprintf(`mutation { deleteCandidate(id: %q) { username candidate { id } } }`, added.ID)
	_, result = doGraphQL(t, h, deleteQuery, login.Token)
	if len(result.Errors) != 0 {
		t.Fatalf("deleteCandidate: %v", result.Errors)
	}
	var deleted struct {
		Username  string           `json:"username"`
		Candidate *json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(result.Data["deleteCandidate"], &deleted); err != nil {
		t.Fatalf("decode deleteCandidate: %v", err)
	}
	if deleted.Candidate != nil && string(*deleted.Candidate) != "null" {
		t.Fatalf("candidate reference survives deletion: %s", *deleted.Candidate)
	}

	_, result = doGraphQL(t, h, `{ loggedInUser { username candidate { id } } }`, login.Token)
	var current struct {
		Candidate *json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(result.Data["loggedInUser"], &current); err != nil {
		t.Fatalf("decode loggedInUser: %v", err)
	}
	if current.Candidate != nil && string(*current.Candidate) != "null" {
		t.Fatalf("loggedInUser still shows candidate: %s", *current.Candidate)
	}
}

func TestUpdateCandidateOverHTTP(t *testing.T) {
	h := newTestApp(t, config.EnvDevelopment)

	doGraphQL(t, h, `mutation {
		createUser(username: "alice", password: "pass12", passwordConfirmation: "pass12") { id }
	}`, "")
	_, result := doGraphQL(t, h, `mutation { login(username: "alice", password: "pass12") { token } }`, "")
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(result.Data["login"], &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	_, result = doGraphQL(t, h, `mutation {
		addCandidate(candidateLastName: "Smith", candidateFirstName: "Jane", country: "France", politicalOrientation: "center") { id }
	}`, login.Token)
	var added struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(result.Data["addCandidate"], &added); err != nil {
		t.Fatalf("decode addCandidate: %v", err)
	}

	// Metadata update.
	updateQuery := fmt.Sprintf(`mutation { updateCandidate(id: %q, country: "Spain") { country politicalOrientation } }`, added.ID)
	_, result = doGraphQL(t, h, updateQuery, login.Token)
	if len(result.Errors) != 0 {
		t.Fatalf("updateCandidate: %v", result.Errors)
	}
	var updated struct {
		Country              string `json:"country"`
		PoliticalOrientation string `json:"politicalOrientation"`
	}
	if err := json.Unmarshal(result.Data["updateCandidate"], &updated); err != nil {
		t.Fatalf("decode updateCandidate: %v", err)
	}
	if updated.Country != "Spain" || updated.PoliticalOrientation != "center" {
		t.Fatalf("updateCandidate = %+v", updated)
	}

	// Unknown id resolves to null, not an error.
	_, result = doGraphQL(t, h, `mutation { updateCandidate(id: "999", country: "Spain") { country } }`, login.Token)
	if len(result.Errors) != 0 {
		t.Fatalf("unknown id must not error: %v", result.Errors)
	}
	if string(result.Data["updateCandidate"]) != "null" {
		t.Fatalf("updateCandidate = %s, want null", result.Data["updateCandidate"])
	}

	// Anonymous update is rejected.
	_, result = doGraphQL(t, h, updateQuery, "")
	if errorCode(result) != "UNAUTHENTICATED" {
		t.Fatalf("expected UNAUTHENTICATED, got %v", result.Errors)
	}
}
