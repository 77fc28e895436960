package httpapi

import (
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/service"
)

// Spreadsheet uploads are larger than JSON bodies but still bounded.
const maxImportBody = 16 << 20

type ImportHandler struct {
	imports service.ImportService
	logger  *zap.Logger
}

func NewImportHandler(imports service.ImportService, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{imports: imports, logger: logger}
}

func (h *ImportHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	// The pointer separates an absent "nodes" key from "nodes": []; the
	// former is a payload-shape error, the latter a legal empty batch.
	var req struct {
		Nodes *[]service.RawNode `json:"nodes"`
	}
	if err := readBodyJSON(r, maxImportBody, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Nodes == nil {
		writeDetail(w, http.StatusBadRequest, "Missing 'nodes' key in request body")
		return
	}
	h.run(w, r, *req.Nodes)
}

func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	file, err := h.uploadedFile(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file upload is required")
		return
	}
	defer file.Close()

	records, err := service.ParseCSV(file)
	if err != nil {
		writeError(w, err)
		return
	}
	h.run(w, r, records)
}

func (h *ImportHandler) ImportXLSX(w http.ResponseWriter, r *http.Request) {
	file, err := h.uploadedFile(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file upload is required")
		return
	}
	defer file.Close()

	records, err := service.ParseXLSX(file)
	if err != nil {
		writeError(w, err)
		return
	}
	h.run(w, r, records)
}

// Template serves the empty spreadsheet to fill in.
func (h *ImportHandler) Template(w http.ResponseWriter, r *http.Request) {
	data, err := service.ImportTemplateXLSX()
	if err != nil {
		h.logger.Error("failed to build import template", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bulk_import_template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ImportHandler) uploadedFile(r *http.Request) (multipart.File, error) {
	if err := r.ParseMultipartForm(maxImportBody); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (h *ImportHandler) run(w http.ResponseWriter, r *http.Request, records []service.RawNode) {
	result, err := h.imports.BulkImport(r.Context(), records)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if len(result.CreatedNodes) > 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}
