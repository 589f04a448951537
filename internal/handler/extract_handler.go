package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"billex/internal/export"
	"billex/internal/service"
)

// ExtractRequest is the body of a URL-based extraction request.
type ExtractRequest struct {
	Document string `json:"document" binding:"required"`
}

// ExtractHandler handles bill extraction endpoints.
type ExtractHandler struct {
	extractService service.ExtractService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(extractService service.ExtractService) *ExtractHandler {
	return &ExtractHandler{extractService: extractService}
}

// ExtractFromURL handles POST /extract-bill-data
// @Summary Extract bill line items from a document URL
// @Description Fetches a bill image (PNG/JPEG) from a URL, runs OCR and LLM extraction, and returns page-wise line items with token usage
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractRequest true "Document reference (http(s) or s3 URL)"
// @Success 200 {object} domain.ExtractResult
// @Failure 400 {object} APIResponse "Missing document reference or undecodable image"
// @Failure 502 {object} APIResponse "Document could not be fetched"
// @Failure 500 {object} APIResponse "OCR or model failure"
// @Router /extract-bill-data [post]
func (h *ExtractHandler) ExtractFromURL(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document field is required")
		return
	}

	result, err := h.extractService.Run(c.Request.Context(), service.DocumentSource{Reference: req.Document})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExtractFromFile handles POST /extract-bill-data-file
// @Summary Extract bill line items from an uploaded image
// @Description Accepts a bill image (PNG/JPEG) as multipart upload and returns page-wise line items with token usage
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Bill image (JPG or PNG)"
// @Success 200 {object} domain.ExtractResult
// @Failure 400 {object} APIResponse "Missing file or undecodable image"
// @Failure 500 {object} APIResponse "OCR or model failure"
// @Router /extract-bill-data-file [post]
func (h *ExtractHandler) ExtractFromFile(c *gin.Context) {
	raw, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.extractService.Run(c.Request.Context(), service.DocumentSource{Raw: raw})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportToXLSX handles POST /extract-bill-data/export
// @Summary Extract bill line items and download them as a spreadsheet
// @Description Runs the same extraction as the upload endpoint and returns the line items as an XLSX workbook
// @Tags extraction
// @Accept multipart/form-data
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param file formData file true "Bill image (JPG or PNG)"
// @Success 200 {file} binary
// @Failure 400 {object} APIResponse "Missing file or undecodable image"
// @Failure 500 {object} APIResponse "OCR, model, or rendering failure"
// @Router /extract-bill-data/export [post]
func (h *ExtractHandler) ExportToXLSX(c *gin.Context) {
	raw, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.extractService.Run(c.Request.Context(), service.DocumentSource{Raw: raw})
	if err != nil {
		HandleError(c, err)
		return
	}

	workbook, err := export.WriteXLSX(result)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bill-line-items.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// readUpload reads the multipart "file" field. On failure the error response
// is already written and ok is false.
func (h *ExtractHandler) readUpload(c *gin.Context) (raw []byte, ok bool) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return nil, false
	}
	defer func() { _ = file.Close() }()

	raw, err = io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return nil, false
	}
	return raw, true
}
