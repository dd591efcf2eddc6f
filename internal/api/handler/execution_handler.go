package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hapyland/internal/app/service"
	"hapyland/internal/common"
	"hapyland/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ExecutionHandler struct {
	gateway        service.Executor
	maxUploadBytes int64
}

func NewExecutionHandler(gateway service.Executor, maxUploadBytes int64) *ExecutionHandler {
	return &ExecutionHandler{gateway: gateway, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes mounts the execution endpoints; limit wraps them (rate limiting).
func (h *ExecutionHandler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/run", h.run)
		r.Post("/run_file", h.runFile)
		r.Post("/run_file/", h.runFile)
	})
}

type runData struct {
	PythonResult *string `json:"python_result"`
	PythonSource *string `json:"python_source"`
	Error        string  `json:"error"`
}

type invalidInputData struct {
	PythonResult *string `json:"python_result"`
	PythonSource *string `json:"python_source"`
}

type faultData struct {
	Error string `json:"error"`
}

func (h *ExecutionHandler) run(w http.ResponseWriter, r *http.Request) {
	var sub service.InlineSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	respondWithOutcome(w, service.RunInline(r.Context(), h.gateway, sub))
}

func (h *ExecutionHandler) runFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondWithError(w, http.StatusBadRequest, "Uploaded file is too large")
			return
		}
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	if _, ok := r.MultipartForm.Value["option"]; !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Missing form field: option")
		return
	}
	option := r.FormValue("option")

	file, _, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Missing form file: file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Could not read uploaded file: "+err.Error())
		return
	}

	respondWithOutcome(w, service.RunUpload(r.Context(), h.gateway, content, option))
}

// respondWithOutcome renders an outcome. The data shape depends on the outcome kind; the
// HTTP status is always 200.
func respondWithOutcome(w http.ResponseWriter, outcome model.ExecutionOutcome) {
	var data interface{}
	switch outcome.Kind {
	case model.OutcomeInvalidInput:
		data = invalidInputData{}
	case model.OutcomeFault:
		data = faultData{Error: outcome.Error}
	default:
		data = runData{
			PythonResult: outcome.Result,
			PythonSource: outcome.TranslatedSource,
			Error:        outcome.Error,
		}
	}
	common.RespondWithEnvelope(w, http.StatusOK, data, string(outcome.Status), outcome.Message)
}
