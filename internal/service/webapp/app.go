package webapp

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"uelco_jobs/internal/domain"
	"uelco_jobs/internal/model"
	"uelco_jobs/internal/service/session"
	"uelco_jobs/internal/service/view"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// App is the HTTP surface of the job tracker. The form frontend is a thin
// client of this API: one route set per user action, each running to
// completion inside the request. Sessions are resolved per request from the
// X-Session-Token header.
type App struct {
	sessions *session.Manager
	uploader domain.Uploader
	renderer domain.CardRenderer
	logger   *zap.Logger
}

func New(sessions *session.Manager, uploader domain.Uploader, renderer domain.CardRenderer, logger *zap.Logger) *App {
	return &App{
		sessions: sessions,
		uploader: uploader,
		renderer: renderer,
		logger:   logger,
	}
}

// Router wires all routes under /api/v1.
func (a *App) Router() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/meta", a.handleMeta).Methods("GET")
	api.HandleFunc("/jobs", a.handleListJobs).Methods("GET")
	api.HandleFunc("/jobs", a.handleAddJob).Methods("POST")
	api.HandleFunc("/jobs/{id}", a.handleEditJob).Methods("PUT")
	api.HandleFunc("/jobs/{id}", a.handleDeleteJob).Methods("DELETE")
	api.HandleFunc("/jobs/{id}/card", a.handleJobCard).Methods("GET")
	api.HandleFunc("/jobs/{id}/whatsapp", a.handleWhatsAppLink).Methods("GET")
	api.HandleFunc("/sync", a.handleSync).Methods("POST")
	api.HandleFunc("/selection", a.handleSelect).Methods("POST")
	api.HandleFunc("/selection", a.handleDeselect).Methods("DELETE")
	api.HandleFunc("/selection", a.handleGetSelection).Methods("GET")
	api.HandleFunc("/uploads", a.handleUpload).Methods("POST")
	api.HandleFunc("/export", a.handleExport).Methods("GET")
	api.HandleFunc("/stats", a.handleStats).Methods("GET")

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Session-Token, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionFor resolves the caller's session. Requests without a token share
// one default session, matching the single-writer assumption of the tool.
func (a *App) sessionFor(r *http.Request) (*session.Session, error) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		token = "default"
	}
	return a.sessions.Get(r.Context(), token)
}

type metaCategory struct {
	Name        model.Category `json:"name"`
	ServiceList []string       `json:"service_suggestions"`
}

func (a *App) handleMeta(w http.ResponseWriter, r *http.Request) {
	cats := make([]metaCategory, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		cats = append(cats, metaCategory{Name: c, ServiceList: model.ServiceSuggestions(c)})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": cats,
		"columns":    model.Columns(),
	})
}

type listResponse struct {
	view.CategoryView
	Dirty    bool   `json:"dirty"`
	Selected string `json:"selected,omitempty"`
}

func (a *App) handleListJobs(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	category, ok := model.ParseCategory(r.URL.Query().Get("category"))
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown category")
		return
	}
	snap := sess.Snapshot()
	resp := listResponse{
		CategoryView: view.Build(snap.Records, category, r.URL.Query().Get("search")),
		Dirty:        snap.Dirty,
	}
	if sel, ok := sess.Selected(category); ok {
		resp.Selected = sel.ID
	}
	respondJSON(w, http.StatusOK, resp)
}

type attachmentPayload struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	Data     string `json:"data"` // base64
}

type addJobRequest struct {
	Category   string             `json:"category"`
	Fields     map[string]string  `json:"fields"`
	Attachment *attachmentPayload `json:"attachment,omitempty"`
}

func (a *App) handleAddJob(w http.ResponseWriter, r *http.Request) {
	var req addJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category, ok := model.ParseCategory(req.Category)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown category")
		return
	}
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}

	rec := model.NewRecord(category)
	for col, raw := range req.Fields {
		if col == model.ColRecordID || col == model.ColCategory {
			continue
		}
		rec.SetValue(col, raw)
	}

	// Best-effort attachment: a failed upload leaves the link empty and the
	// record is saved regardless.
	if req.Attachment != nil && req.Attachment.Data != "" {
		if link := a.uploadAttachment(r, category, req.Attachment); link != "" {
			rec.PhotoLink = link
		}
	}

	if err := sess.Add(r.Context(), rec); err != nil {
		a.fail(w, http.StatusBadGateway, "could not save job", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"record": rec,
		"dirty":  sess.Dirty(),
	})
}

type editJobRequest struct {
	Changes map[string]string `json:"changes"`
}

func (a *App) handleEditJob(w http.ResponseWriter, r *http.Request) {
	var req editJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	id := mux.Vars(r)["id"]
	changed, err := sess.ApplyEdit([]string{id}, req.Changes)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"changed": changed,
		"dirty":   sess.Dirty(),
	})
}

func (a *App) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	id := mux.Vars(r)["id"]
	if err := sess.Delete(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		a.fail(w, http.StatusBadGateway, "could not delete job", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"dirty": sess.Dirty()})
}

type syncRequest struct {
	ForceReload *bool `json:"force_reload,omitempty"`
}

func (a *App) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	// An empty body means the default explicit sync: push then reload.
	_ = json.NewDecoder(r.Body).Decode(&req)
	forceReload := true
	if req.ForceReload != nil {
		forceReload = *req.ForceReload
	}
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	if err := sess.Sync(r.Context(), forceReload); err != nil {
		a.fail(w, http.StatusBadGateway, "sync failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"dirty": sess.Dirty()})
}

type selectRequest struct {
	ID string `json:"id"`
}

func (a *App) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	if err := sess.Select(req.ID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"selected": req.ID})
}

func (a *App) handleDeselect(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	sess.Deselect()
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSelection returns the selected record only when it belongs to the
// asking category, so an edit form under one tab cannot pick up a selection
// made under another.
func (a *App) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	category, ok := model.ParseCategory(r.URL.Query().Get("category"))
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown category")
		return
	}
	rec, ok := sess.Selected(category)
	if !ok {
		respondError(w, http.StatusNotFound, "no selection in this category")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"record": rec})
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req attachmentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == "" {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "attachment data is not valid base64")
		return
	}
	link := a.uploader.Upload(r.Context(), data, req.Filename, req.MimeType)
	respondJSON(w, http.StatusOK, map[string]string{"link": link})
}

func (a *App) handleJobCard(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	rec, ok := sess.Get(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	pdf, err := a.renderer.Render(rec)
	if err != nil {
		a.fail(w, http.StatusInternalServerError, "could not render job card", err)
		return
	}
	filename := fmt.Sprintf("jobcard_%s.pdf", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdf)))
	w.Write(pdf)
}

func (a *App) handleWhatsAppLink(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	rec, ok := sess.Get(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	link := WhatsAppLink(rec)
	if link == "" {
		respondError(w, http.StatusUnprocessableEntity, "record has no usable client contact number")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"link": link})
}

// uploadAttachment prefixes the filename with category and timestamp to keep
// collisions unlikely. Best effort, not guaranteed unique.
func (a *App) uploadAttachment(r *http.Request, category model.Category, att *attachmentPayload) string {
	data, err := base64.StdEncoding.DecodeString(att.Data)
	if err != nil {
		a.logger.Error("attachment data is not valid base64", zap.Error(err))
		return ""
	}
	name := fmt.Sprintf("%s_%s_%s",
		sanitizeFilename(string(category)),
		time.Now().Format("20060102_150405"),
		sanitizeFilename(att.Filename))
	return a.uploader.Upload(r.Context(), data, name, att.MimeType)
}

func (a *App) fail(w http.ResponseWriter, status int, msg string, err error) {
	a.logger.Error(msg, zap.Error(err))
	respondError(w, status, fmt.Sprintf("%s: %v", msg, err))
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
