package http

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"talentflow-assessments/internal/app"
	"talentflow-assessments/internal/domain"
)

//go:embed assessment.schema.json
var assessmentSchemaJSON string

var assessmentSchema = mustSchema(assessmentSchemaJSON)

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile assessment schema: %v", err))
	}
	return schema
}

const maxBodyBytes = 1 << 20

// RESTHandler serves the request/response API used by the job board and
// candidate forms.
type RESTHandler struct {
	service *app.AssessmentService
	logger  *zap.Logger
}

func NewRESTHandler(service *app.AssessmentService, logger *zap.Logger) *RESTHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RESTHandler{service: service, logger: logger}
}

// Register mounts the API routes on mux.
func (h *RESTHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/jobs/all", h.listJobs)
	mux.HandleFunc("GET /api/assessments/{jobId}", h.getAssessment)
	mux.HandleFunc("PUT /api/assessments/{jobId}", h.putAssessment)
	mux.HandleFunc("POST /api/assessments/{jobId}/submit", h.submit)
}

func (h *RESTHandler) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.Jobs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// getAssessment answers null when the job has no stored assessment.
func (h *RESTHandler) getAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.StoredAssessment(r.Context(), r.PathValue("jobId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// putAssessment upserts the body under the job id from the path, which wins
// over any jobId in the body.
func (h *RESTHandler) putAssessment(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if msg, ok := validateAgainstSchema(body); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var a domain.Assessment
	if err := json.Unmarshal(body, &a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.JobID = jobID

	saved, issues, err := h.service.SaveAssessment(r.Context(), a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(issues) > 0 {
		h.logger.Info("assessment saved with reference issues", zap.String("job", jobID), zap.Int("issues", len(issues)))
	}
	writeJSON(w, http.StatusOK, saved)
}

// submit validates the body against the stored assessment and records it.
func (h *RESTHandler) submit(w http.ResponseWriter, r *http.Request) {
	var responses domain.ResponseSet
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&responses); err != nil {
		writeError(w, http.StatusBadRequest, "invalid responses: "+err.Error())
		return
	}

	sub, err := h.service.SubmitResponses(r.Context(), r.PathValue("jobId"), responses)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, verr)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"submissionId": sub.SubmissionID})
}

func validateAgainstSchema(body []byte) (string, bool) {
	result, err := assessmentSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "invalid json: " + err.Error(), false
	}
	if result.Valid() {
		return "", true
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; "), false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}
