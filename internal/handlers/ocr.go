package handlers

import (
	"io"
	"net/http"
)

// ExtractDocument handles POST /api/v1/ocr: runs text detection over an upload
// and returns the raw text plus the recognized identity fields. Requires
// Vision to be configured.
func (h *Handler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	if h.OCR == nil {
		writeJSON(w, http.StatusServiceUnavailable, errResp("OCR is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("failed to parse form or file too large"))
		return
	}
	file, hdr, err := formFile(r, "file", "certificate", "document")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errResp("failed to read uploaded file"))
		return
	}

	text, err := h.OCR.Text(r.Context(), data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("could not extract text from document"))
		return
	}
	fields := h.fieldsFromText(r.Context(), text)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"text":              text,
		"extracted_fields":  fields,
		"original_filename": hdr.Filename,
		"file_size":         len(data),
	})
}
