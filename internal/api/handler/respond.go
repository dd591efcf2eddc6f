package handler

import (
	"net/http"

	"hapyland/internal/common"

	"go.uber.org/zap"
)

// respondServiceError answers with the status the error maps to. Server-side failures
// are logged and hidden behind a generic detail.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	code := common.HTTPStatusFromError(err)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		common.RespondWithError(w, code, http.StatusText(code))
		return
	}
	common.RespondWithError(w, code, err.Error())
}
