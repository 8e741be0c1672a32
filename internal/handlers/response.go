package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/services"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func statusAndMessage(err error) (int, string) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}

func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	status, message := statusAndMessage(err)

	logger.Error("Request error", "status", status, "error", err)

	respondJSON(w, logger, status, map[string]string{"error": message})
}

// respondEnvelope writes the analysis error envelope, which carries every
// result key with an empty value next to "error".
func respondEnvelope(w http.ResponseWriter, logger *utils.Logger, err error) {
	status, message := statusAndMessage(err)

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		logger.Warn("Analysis failed", "kind", appErr.Kind, "status", status, "error", err)
	} else {
		logger.Error("Analysis failed", "status", status, "error", err)
	}

	respondJSON(w, logger, status, models.NewErrorEnvelope(message))
}

func respondFile(w http.ResponseWriter, logger *utils.Logger, file *services.File) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(file.Name, `"`, "")+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		logger.Warn("Failed to write file response", "error", err, "name", file.Name)
	}
}
