package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/quizbook/quizbook/internal/api/http"
	"github.com/quizbook/quizbook/internal/bank"
	"github.com/quizbook/quizbook/internal/db"
	"github.com/quizbook/quizbook/internal/registry"
)

func testBank(t *testing.T) *bank.Bank {
	t.Helper()
	m := bank.Manifest{Groups: []bank.ManifestGroup{
		{Label: "Unit 1", Children: []bank.ManifestChild{{File: "a.json", Count: 2}}},
	}}
	files := map[string]string{
		"a.json": `[{"id":"q1","prompt":"p1","options":["x","y"],"answer":0,"exp":"e1"},
		            {"id":"q2","prompt":"p2","options":["x","y","z"],"answer":[1,2]}]`,
	}
	b, err := bank.LoadBank(m, func(file string) ([]byte, error) {
		data, ok := files[file]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", file)
		}
		return []byte(data), nil
	})
	if err != nil {
		t.Fatalf("LoadBank: %v", err)
	}
	return b
}

func testServer(t *testing.T) (*httptest.Server, *registry.Registry) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = dbh.Close() })

	reg := registry.New(db.NewKVStore(dbh))
	r := chi.NewRouter()
	api.Mount(r, testBank(t), api.NewManager(), reg, db.NewSessionLog(dbh))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, reg
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, url, err)
		}
	}
	return resp
}

func TestQuizFlow(t *testing.T) {
	srv, _ := testServer(t)

	var created struct {
		SessionID string `json:"session_id"`
		Total     int    `json:"total"`
	}
	resp := doJSON(t, "POST", srv.URL+"/sessions", map[string]any{"group": "Unit 1"}, &created)
	if resp.StatusCode != 200 || created.Total != 2 || created.SessionID == "" {
		t.Fatalf("create: %d %+v", resp.StatusCode, created)
	}
	base := srv.URL + "/sessions/" + created.SessionID

	var current struct {
		Question bank.Question `json:"question"`
	}
	doJSON(t, "GET", base+"/current", nil, &current)
	if current.Question.ID != "q1" {
		t.Fatalf("current: %+v", current.Question)
	}
	if len(current.Question.Answer) != 0 {
		t.Fatalf("answer key leaked before submission: %v", current.Question.Answer)
	}

	// q1 answered wrong: the response reveals key and explanation
	var graded struct {
		Correct bool   `json:"correct"`
		Answer  []int  `json:"answer"`
		Exp     string `json:"exp"`
	}
	doJSON(t, "POST", base+"/answer", map[string]any{"selection": []int{1}}, &graded)
	if graded.Correct || len(graded.Answer) != 1 || graded.Answer[0] != 0 || graded.Exp != "e1" {
		t.Fatalf("graded: %+v", graded)
	}

	// double submission is a conflict
	resp = doJSON(t, "POST", base+"/answer", map[string]any{"selection": []int{0}}, nil)
	if resp.StatusCode != 409 {
		t.Fatalf("resubmit status = %d, want 409", resp.StatusCode)
	}

	doJSON(t, "POST", base+"/advance", nil, nil)
	// q2 multi-answer, exact match
	doJSON(t, "POST", base+"/answer", map[string]any{"selection": []int{2, 1}}, &graded)
	if !graded.Correct {
		t.Fatalf("exact multi selection scored incorrect")
	}
	doJSON(t, "POST", base+"/advance", nil, nil)

	var sum struct {
		Total     int `json:"total"`
		Correct   int `json:"correct"`
		Incorrect int `json:"incorrect"`
	}
	doJSON(t, "POST", base+"/finish", nil, &sum)
	if sum.Total != 2 || sum.Correct != 1 || sum.Incorrect != 1 {
		t.Fatalf("summary: %+v", sum)
	}

	// finished sessions are gone
	resp = doJSON(t, "GET", base+"/current", nil, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("current after finish = %d, want 404", resp.StatusCode)
	}

	// the miss landed in the wrong book
	var wrong []registry.WrongBookEntry
	doJSON(t, "GET", srv.URL+"/wrongbook", nil, &wrong)
	if len(wrong) != 1 || wrong[0].QuestionID != "q1" {
		t.Fatalf("wrong book: %+v", wrong)
	}

	// history recorded the session
	var hist []db.LogEntry
	doJSON(t, "GET", srv.URL+"/history", nil, &hist)
	if len(hist) != 1 || hist[0].Correct != 1 {
		t.Fatalf("history: %+v", hist)
	}
}

func TestAbandonLeavesNoTrace(t *testing.T) {
	srv, _ := testServer(t)

	var created struct {
		SessionID string `json:"session_id"`
	}
	doJSON(t, "POST", srv.URL+"/sessions", map[string]any{}, &created)
	base := srv.URL + "/sessions/" + created.SessionID

	doJSON(t, "POST", base+"/answer", map[string]any{"selection": []int{1}}, nil)
	resp := doJSON(t, "DELETE", base, nil, nil)
	if resp.StatusCode != 204 {
		t.Fatalf("abandon status = %d", resp.StatusCode)
	}

	var wrong []registry.WrongBookEntry
	doJSON(t, "GET", srv.URL+"/wrongbook", nil, &wrong)
	if len(wrong) != 0 {
		t.Fatalf("abandoned session fed the wrong book: %+v", wrong)
	}
}

// An unanswered current question must carry no top-level answer object at
// all, not an empty one.
func TestCurrentOmitsAnswerUntilSubmitted(t *testing.T) {
	srv, _ := testServer(t)

	var created struct {
		SessionID string `json:"session_id"`
	}
	doJSON(t, "POST", srv.URL+"/sessions", map[string]any{}, &created)
	base := srv.URL + "/sessions/" + created.SessionID

	var raw map[string]json.RawMessage
	doJSON(t, "GET", base+"/current", nil, &raw)
	if _, ok := raw["answer"]; ok {
		t.Fatalf("unanswered current carries answer: %s", raw["answer"])
	}

	doJSON(t, "POST", base+"/answer", map[string]any{"selection": []int{0}}, nil)
	raw = nil
	doJSON(t, "GET", base+"/current", nil, &raw)
	if _, ok := raw["answer"]; !ok {
		t.Fatal("answered current missing the recorded answer")
	}
}

// Duplicated client-supplied ids collapse in the engine, so the session
// covers each question once.
func TestCreateSessionDeduplicatesIDs(t *testing.T) {
	srv, _ := testServer(t)

	var created struct {
		Total int `json:"total"`
	}
	doJSON(t, "POST", srv.URL+"/sessions",
		map[string]any{"question_ids": []string{"q1", "q1", "q2"}}, &created)
	if created.Total != 2 {
		t.Fatalf("total = %d, want 2", created.Total)
	}
}

// Finishing is take-and-remove in one step: a second finish cannot record
// the same outcome into the wrong book again.
func TestFinishRecordsOutcomeOnce(t *testing.T) {
	srv, _ := testServer(t)

	var created struct {
		SessionID string `json:"session_id"`
	}
	doJSON(t, "POST", srv.URL+"/sessions", map[string]any{"question_ids": []string{"q1"}}, &created)
	base := srv.URL + "/sessions/" + created.SessionID

	// finishing an in-progress session is rejected and keeps it managed
	resp := doJSON(t, "POST", base+"/finish", nil, nil)
	if resp.StatusCode != 409 {
		t.Fatalf("early finish status = %d, want 409", resp.StatusCode)
	}

	doJSON(t, "POST", base+"/answer", map[string]any{"selection": []int{1}}, nil)
	doJSON(t, "POST", base+"/advance", nil, nil)

	if resp := doJSON(t, "POST", base+"/finish", nil, nil); resp.StatusCode != 200 {
		t.Fatalf("finish status = %d", resp.StatusCode)
	}
	if resp := doJSON(t, "POST", base+"/finish", nil, nil); resp.StatusCode != 404 {
		t.Fatalf("second finish status = %d, want 404", resp.StatusCode)
	}

	var wrong []registry.WrongBookEntry
	doJSON(t, "GET", srv.URL+"/wrongbook", nil, &wrong)
	if len(wrong) != 1 || wrong[0].MissCount != 1 {
		t.Fatalf("wrong book after double finish: %+v", wrong)
	}
}

func TestToggleFavoriteEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	var out struct {
		Favorite bool `json:"favorite"`
	}
	doJSON(t, "POST", srv.URL+"/favorites/q1/toggle", nil, &out)
	if !out.Favorite {
		t.Fatal("toggle on failed")
	}
	doJSON(t, "POST", srv.URL+"/favorites/q1/toggle", nil, &out)
	if out.Favorite {
		t.Fatal("toggle off failed")
	}
}

func TestCreateSessionRejectsUnknownGroup(t *testing.T) {
	srv, _ := testServer(t)
	resp := doJSON(t, "POST", srv.URL+"/sessions", map[string]any{"group": "nope"}, nil)
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
