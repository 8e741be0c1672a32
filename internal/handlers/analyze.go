package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/cheatsheet-api/internal/auth"
	"github.com/BerylCAtieno/cheatsheet-api/internal/extractor"
	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/services"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

const DefaultMaxMemory = 10 << 20

type AnalyzeHandler struct {
	service   services.AnalysisService
	maxMemory int64
	logger    *utils.Logger
}

// NewAnalyzeHandler serves document uploads. maxMemory bounds the multipart
// bytes held in memory; larger uploads spill to temporary files.
func NewAnalyzeHandler(service services.AnalysisService, maxMemory int64, logger *utils.Logger) *AnalyzeHandler {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}
	return &AnalyzeHandler{
		service:   service,
		maxMemory: maxMemory,
		logger:    logger,
	}
}

func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	noFile := utils.NewAppError(utils.KindNoFileProvided, http.StatusBadRequest, services.MessageNoFile, nil)

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			respondEnvelope(w, h.logger, noFile)
			return
		}
		respondEnvelope(w, h.logger, utils.NewAppError(utils.KindUnexpected, http.StatusInternalServerError, "Failed to read request", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondEnvelope(w, h.logger, noFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondEnvelope(w, h.logger, utils.NewAppError(utils.KindUnexpected, http.StatusInternalServerError, "Failed to read file", err))
		return
	}
	if len(data) == 0 {
		respondEnvelope(w, h.logger, noFile)
		return
	}

	doc := models.UploadedDocument{
		Data:      data,
		MediaType: determineMediaType(header.Filename, header.Header.Get("Content-Type")),
		FileName:  header.Filename,
	}
	docType := models.ParseDocumentType(r.FormValue("documentType"))

	h.logger.Info("File upload received",
		"filename", doc.FileName,
		"reported_content_type", header.Header.Get("Content-Type"),
		"media_type", doc.MediaType,
		"size", len(data),
		"document_type", docType)

	result, err := h.service.Analyze(r.Context(), auth.CredentialsFromRequest(w, r), doc, docType)
	if err != nil {
		respondEnvelope(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result.WithDefaults())
}

// determineMediaType trusts the declared part type, falling back to the file
// extension when the client sent none or a generic one.
func determineMediaType(filename, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.HasPrefix(strings.ToLower(declared), "application/octet-stream") {
		return declared
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractor.MediaTypePDF
	case ".txt", ".text":
		return extractor.MediaTypePlain
	}
	return declared
}
