package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/frelance/internal/auth"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/service"
	"github.com/sakif/frelance/internal/session"
)

// AppHandler exposes the session events of AppService over HTTP.
//
// Every mutating route answers with the full session snapshot, so the front
// end never has to merge partial updates: it replaces its state and renders
// snapshot.page. Read routes return one slice of the snapshot.
//
// The caller is identified by the auth middleware: Visitor always sets a
// visitor ID, OptionalAuth adds the user ID when the token cookie is valid.
type AppHandler struct {
	app    *service.AppService
	logger *slog.Logger
}

func NewAppHandler(app *service.AppService, logger *slog.Logger) *AppHandler {
	return &AppHandler{app: app, logger: logger}
}

// identity builds the session identity from the request context.
func identity(r *http.Request) service.Identity {
	userID, _ := auth.UserIDFromContext(r.Context())
	visitorID, _ := auth.VisitorIDFromContext(r.Context())
	return service.Identity{UserID: userID, VisitorID: visitorID}
}

// snapshot loads the caller's snapshot for the read routes. It reports
// whether the handler should go on.
func (h *AppHandler) snapshot(w http.ResponseWriter, r *http.Request) (session.Snapshot, bool) {
	snap, err := h.app.Snapshot(r.Context(), identity(r))
	if err != nil {
		h.logger.Warn("loading snapshot failed", slog.String("error", err.Error()))
		writeSnapshot(w, snap, err)
		return snap, false
	}
	return snap, true
}

// =========================================================================
// SESSION & NAVIGATION
// =========================================================================

// HandleState returns the full snapshot.
//
// HTTP: GET /api/state
func (h *AppHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

// HandleView returns the rendered current page.
//
// HTTP: GET /api/view
func (h *AppHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap.Page)
	}
}

type navigateRequest struct {
	View string `json:"view"`
}

// HandleNavigate moves to another view.
//
// HTTP: POST /api/view   {"view": "pricing"}
func (h *AppHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.Navigate(r.Context(), identity(r), req.View)
	writeSnapshot(w, snap, err)
}

// HandleBack follows the back rule of the current view.
//
// HTTP: POST /api/view/back
func (h *AppHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.Back(r.Context(), identity(r))
	writeSnapshot(w, snap, err)
}

// =========================================================================
// SEARCH & RESULTS
// =========================================================================

// HandleSearchOptions returns the fixed option lists for the search form.
//
// HTTP: GET /api/search/options
func (h *AppHandler) HandleSearchOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.Options())
}

// HandleSearch runs a job search.
//
// HTTP: POST /api/search   {"query": "react developer", "level": "Any Level", ...}
//
// Quota and finder failures still answer with the snapshot: the error banner
// and the cleared result list are part of it.
func (h *AppHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var criteria model.SearchCriteria
	if err := decodeJSON(w, r, &criteria); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.Search(r.Context(), identity(r), criteria)
	writeSnapshot(w, snap, err)
}

// HandleResults returns the presented result page.
//
// HTTP: GET /api/results
func (h *AppHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap.Results)
	}
}

type sortRequest struct {
	SortBy string `json:"sortBy"`
}

// HandleSort changes the result ordering.
//
// HTTP: POST /api/results/sort   {"sortBy": "match"}
func (h *AppHandler) HandleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.SortResults(r.Context(), identity(r), req.SortBy)
	writeSnapshot(w, snap, err)
}

type pageRequest struct {
	Page int `json:"page"`
}

// HandlePage changes the result page.
//
// HTTP: POST /api/results/page   {"page": 2}
func (h *AppHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.ChangePage(r.Context(), identity(r), req.Page)
	writeSnapshot(w, snap, err)
}

type jobRequest struct {
	JobID string `json:"jobId"`
}

// HandleSelect selects the job shown in the detail pane.
//
// HTTP: POST /api/results/select   {"jobId": "..."}
func (h *AppHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.SelectJob(r.Context(), identity(r), req.JobID)
	writeSnapshot(w, snap, err)
}

// =========================================================================
// PROFILE
// =========================================================================

// HandleGetProfile returns the signed-in user's profile.
//
// HTTP: GET /api/profile
func (h *AppHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap.State.Profile)
	}
}

// HandleSaveProfile replaces the profile.
//
// HTTP: PUT /api/profile
func (h *AppHandler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p model.UserProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.SaveProfile(r.Context(), identity(r), p)
	writeSnapshot(w, snap, err)
}

// =========================================================================
// PROJECTS
// =========================================================================

// HandleListProjects returns the pipeline, newest first.
//
// HTTP: GET /api/projects
func (h *AppHandler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap.State.Projects)
	}
}

// HandleAddProject promotes a job from the current results into the pipeline.
//
// HTTP: POST /api/projects   {"jobId": "..."}
func (h *AppHandler) HandleAddProject(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.AddProject(r.Context(), identity(r), req.JobID)
	if err == nil {
		writeJSON(w, http.StatusCreated, snap)
		return
	}
	writeSnapshot(w, snap, err)
}

// HandleUpdateProject changes a project's status or value.
//
// HTTP: PUT /api/projects/{id}   {"status": "completed"} or {"projectValue": 1200}
func (h *AppHandler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch service.ProjectPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.UpdateProject(r.Context(), identity(r), chi.URLParam(r, "id"), patch)
	writeSnapshot(w, snap, err)
}

// HandleDeleteProject removes a project from the pipeline.
//
// HTTP: DELETE /api/projects/{id}
func (h *AppHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.DeleteProject(r.Context(), identity(r), chi.URLParam(r, "id"))
	writeSnapshot(w, snap, err)
}

// HandleTimer starts or stops time tracking on a project.
//
// HTTP: POST /api/projects/{id}/timer/{action}   action is "start" or "stop"
func (h *AppHandler) HandleTimer(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var (
		snap session.Snapshot
		err  error
	)
	switch chi.URLParam(r, "action") {
	case "start":
		snap, err = h.app.StartTimer(r.Context(), identity(r), projectID)
	case "stop":
		snap, err = h.app.StopTimer(r.Context(), identity(r), projectID)
	default:
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Unknown timer action.",
		})
		return
	}
	writeSnapshot(w, snap, err)
}

// =========================================================================
// COMMUNITY
// =========================================================================

// HandleListThreads reloads and returns the forum threads.
//
// HTTP: GET /api/threads
func (h *AppHandler) HandleListThreads(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.RefreshThreads(r.Context(), identity(r))
	if err != nil {
		writeSnapshot(w, snap, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.State.Threads)
}

type threadRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// HandleAddThread starts a forum thread.
//
// HTTP: POST /api/threads   {"title": "...", "content": "...", "category": "General Discussion"}
func (h *AppHandler) HandleAddThread(w http.ResponseWriter, r *http.Request) {
	var req threadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.AddThread(r.Context(), identity(r), req.Title, req.Content, req.Category)
	if err == nil {
		writeJSON(w, http.StatusCreated, snap)
		return
	}
	writeSnapshot(w, snap, err)
}

type replyRequest struct {
	Content string `json:"content"`
}

// HandleAddReply replies to a thread.
//
// HTTP: POST /api/threads/{id}/replies   {"content": "..."}
func (h *AppHandler) HandleAddReply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.AddReply(r.Context(), identity(r), chi.URLParam(r, "id"), req.Content)
	if err == nil {
		writeJSON(w, http.StatusCreated, snap)
		return
	}
	writeSnapshot(w, snap, err)
}

// =========================================================================
// BILLING
// =========================================================================

// subscriptionResponse is the subscription with the values derived from it.
type subscriptionResponse struct {
	Subscription    model.SubscriptionState `json:"subscription"`
	UnlockedFeature string                  `json:"unlockedFeature,omitempty"`
	CanSearch       bool                    `json:"canSearch"`
}

// HandleGetSubscription returns the caller's plan.
//
// HTTP: GET /api/subscription
func (h *AppHandler) HandleGetSubscription(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, subscriptionResponse{
			Subscription:    snap.State.Subscription,
			UnlockedFeature: string(snap.UnlockedFeature),
			CanSearch:       snap.CanSearch,
		})
	}
}

type subscribeRequest struct {
	Tier string `json:"tier"`
}

// HandleSubscribe buys a paid tier.
//
// HTTP: POST /api/subscription   {"tier": "pro"}
func (h *AppHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.Subscribe(r.Context(), identity(r), req.Tier)
	writeSnapshot(w, snap, err)
}

// HandlePlans returns the pricing table.
//
// HTTP: GET /api/plans
func (h *AppHandler) HandlePlans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Plans())
}

// =========================================================================
// ACTIVITY, HISTORY & DASHBOARD
// =========================================================================

// HandleActivities returns the activity feed, newest first.
//
// HTTP: GET /api/activities
func (h *AppHandler) HandleActivities(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap.State.Activities)
	}
}

type documentRequest struct {
	JobID   string             `json:"jobId"`
	DocType model.DocumentType `json:"docType"`
}

// HandleLogDocument records that a document was generated for a job.
//
// HTTP: POST /api/activities/documents   {"jobId": "...", "docType": "Proposal"}
func (h *AppHandler) HandleLogDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.app.LogDocument(r.Context(), identity(r), req.JobID, req.DocType)
	if err == nil {
		writeJSON(w, http.StatusCreated, snap)
		return
	}
	writeSnapshot(w, snap, err)
}

// HandleHistory returns the search history, newest first.
//
// HTTP: GET /api/history
func (h *AppHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap.State.History)
	}
}

// HandleDashboard returns the dashboard statistics.
//
// HTTP: GET /api/dashboard
func (h *AppHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap.Dashboard)
	}
}
