package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"uelco_jobs/internal/model"
	"uelco_jobs/internal/service/session"
	"uelco_jobs/internal/service/view"

	"go.uber.org/zap"
)

type memStore struct {
	mu     sync.Mutex
	remote []model.Record
}

func (m *memStore) Load(ctx context.Context) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Record, len(m.remote))
	copy(out, m.remote)
	return out, nil
}

func (m *memStore) Save(ctx context.Context, records []model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote = make([]model.Record, len(records))
	copy(m.remote, records)
	return nil
}

// failingUploader stands in for a relay that answers HTTP 500 on every call.
type failingUploader struct{}

func (failingUploader) Upload(ctx context.Context, data []byte, filename, mimeType string) string {
	return ""
}

type stubRenderer struct{}

func (stubRenderer) Render(record model.Record) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

func newTestApp(store *memStore) *App {
	logger := zap.NewNop()
	return New(session.NewManager(store, 0, 0, logger), failingUploader{}, stubRenderer{}, logger)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Session-Token", "test-session")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAddJobWithFailedUploadStillPersists(t *testing.T) {
	store := &memStore{}
	h := newTestApp(store).Router()

	w := doJSON(t, h, "POST", "/api/v1/jobs", addJobRequest{
		Category: "Cable Faults",
		Fields: map[string]string{
			model.ColClientName:  "Jane Doe",
			model.ColServiceType: "Jointing",
		},
		Attachment: &attachmentPayload{
			Filename: "fault.jpg",
			MimeType: "image/jpeg",
			Data:     "cGhvdG8=",
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	// The record landed in the store despite the relay failure, link empty.
	recs, _ := store.Load(context.Background())
	if len(recs) != 1 {
		t.Fatalf("store has %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.PhotoLink != "" {
		t.Errorf("PhotoLink = %q, want empty after failed upload", rec.PhotoLink)
	}
	if rec.Completed || rec.Invoiced {
		t.Error("new record flags should be false")
	}

	// And it shows up in the category's active partition.
	lw := doJSON(t, h, "GET", "/api/v1/jobs?category=Cable+Faults", nil)
	if lw.Code != http.StatusOK {
		t.Fatalf("list status = %d", lw.Code)
	}
	var resp struct {
		view.CategoryView
		Dirty bool `json:"dirty"`
	}
	if err := json.Unmarshal(lw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if len(resp.Active) != 1 || resp.Active[0].ClientName != "Jane Doe" {
		t.Errorf("active partition wrong: %+v", resp.Active)
	}
	if len(resp.Completed) != 0 {
		t.Errorf("completed partition should be empty: %+v", resp.Completed)
	}
	if resp.Dirty {
		t.Error("add implies sync; session should be clean")
	}
}

func TestEditMarksDirtyAndSyncClears(t *testing.T) {
	seed := model.NewRecord(model.CategorySales)
	seed.ClientName = "Acme Mining"
	store := &memStore{remote: []model.Record{seed}}
	h := newTestApp(store).Router()

	w := doJSON(t, h, "PUT", "/api/v1/jobs/"+seed.ID, editJobRequest{
		Changes: map[string]string{model.ColCompleted: "TRUE"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body = %s", w.Code, w.Body.String())
	}
	var editResp struct {
		Changed bool `json:"changed"`
		Dirty   bool `json:"dirty"`
	}
	json.Unmarshal(w.Body.Bytes(), &editResp)
	if !editResp.Changed || !editResp.Dirty {
		t.Errorf("edit response = %+v", editResp)
	}

	// The edit is local only until the explicit sync.
	recs, _ := store.Load(context.Background())
	if recs[0].Completed {
		t.Error("edit reached the store before sync")
	}

	sw := doJSON(t, h, "POST", "/api/v1/sync", nil)
	if sw.Code != http.StatusOK {
		t.Fatalf("sync status = %d", sw.Code)
	}
	recs, _ = store.Load(context.Background())
	if !recs[0].Completed {
		t.Error("sync did not push the edit")
	}
}

func TestDeleteJob(t *testing.T) {
	seed := model.NewRecord(model.CategoryNote)
	seed.Notes = "scrap me"
	store := &memStore{remote: []model.Record{seed}}
	h := newTestApp(store).Router()

	w := doJSON(t, h, "DELETE", "/api/v1/jobs/"+seed.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	recs, _ := store.Load(context.Background())
	if len(recs) != 0 {
		t.Errorf("store still has %d records", len(recs))
	}

	if w := doJSON(t, h, "DELETE", "/api/v1/jobs/"+seed.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestSelectionEndpointsScopeByCategory(t *testing.T) {
	seed := model.NewRecord(model.CategoryTransformer)
	seed.ClientName = "Jane Doe"
	store := &memStore{remote: []model.Record{seed}}
	h := newTestApp(store).Router()

	if w := doJSON(t, h, "POST", "/api/v1/selection", selectRequest{ID: seed.ID}); w.Code != http.StatusOK {
		t.Fatalf("select status = %d", w.Code)
	}
	if w := doJSON(t, h, "GET", "/api/v1/selection?category=Transformer+Servicing", nil); w.Code != http.StatusOK {
		t.Errorf("selection invisible in own category: %d", w.Code)
	}
	if w := doJSON(t, h, "GET", "/api/v1/selection?category=Cable+Faults", nil); w.Code != http.StatusNotFound {
		t.Errorf("selection visible under another category: %d", w.Code)
	}
}

func TestJobCardDownload(t *testing.T) {
	seed := model.NewRecord(model.CategorySales)
	store := &memStore{remote: []model.Record{seed}}
	h := newTestApp(store).Router()

	w := doJSON(t, h, "GET", "/api/v1/jobs/"+seed.ID+"/card", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("card status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("card body is not a PDF")
	}
}

func TestListUnknownCategory(t *testing.T) {
	store := &memStore{}
	h := newTestApp(store).Router()
	if w := doJSON(t, h, "GET", "/api/v1/jobs?category=Plumbing", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
