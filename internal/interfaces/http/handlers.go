package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haekalr/kasbon/internal/debt"
	"github.com/haekalr/kasbon/internal/domain/entity"
	"github.com/haekalr/kasbon/internal/export"
	"github.com/haekalr/kasbon/internal/gate"
	"github.com/haekalr/kasbon/internal/infrastructure/persistence/repository"
	"github.com/haekalr/kasbon/internal/stream"
)

// passwordHeader carries the shared action password on mutating requests.
// A "password" field in the JSON body works too.
const passwordHeader = "X-Action-Password"

// Handler holds the dependencies of all routes.
type Handler struct {
	service       *debt.Service
	hub           *stream.Hub
	excel         *export.ExcelWriter
	gateSecret    string
	maxPhotoBytes int64
	logger        *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(
	service *debt.Service,
	hub *stream.Hub,
	excel *export.ExcelWriter,
	gateSecret string,
	maxPhotoBytes int64,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		service:       service,
		hub:           hub,
		excel:         excel,
		gateSecret:    gateSecret,
		maxPhotoBytes: maxPhotoBytes,
		logger:        logger,
	}
}

// submitRequest is a debt form plus the action password.
type submitRequest struct {
	debt.Form
	Password string `json:"password"`
}

// ListDebts returns the full collection and the outstanding total.
func (h *Handler) ListDebts(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":            result.Items,
		"totalOutstanding": result.TotalOutstanding,
	})
}

// SubmitDebt runs the gated add path: a submission for a name with an
// open entry merges into it, anything else creates a new entry.
func (h *Handler) SubmitDebt(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var result *debt.SubmitResult
	g := gate.New(h.gateSecret)
	g.Begin(gate.KindCreate, func() error {
		var err error
		result, err = h.service.Submit(c.Request.Context(), req.Form)
		return err
	})

	if err := g.Confirm(h.password(c, req.Password)); err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"entry":       result.Debt,
		"merged":      result.Merged,
		"photoErrors": errorMessages(result.PhotoErrors),
	})
}

// EditDebt overwrites the selected entry with the submitted fields
// wholesale. The add path's merge arithmetic never applies here.
func (h *Handler) EditDebt(c *gin.Context) {
	id := c.Param("id")

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var result *debt.SubmitResult
	g := gate.New(h.gateSecret)
	g.Begin(gate.KindEdit, func() error {
		var err error
		result, err = h.service.Edit(c.Request.Context(), id, req.Form)
		return err
	})

	if err := g.Confirm(h.password(c, req.Password)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry":       result.Debt,
		"photoErrors": errorMessages(result.PhotoErrors),
	})
}

// DeleteDebt removes an entry after gate confirmation. The password comes
// from the header or an optional JSON body; an empty body is fine.
func (h *Handler) DeleteDebt(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&req)

	g := gate.New(h.gateSecret)
	g.Begin(gate.KindDelete, func() error {
		return h.service.Remove(c.Request.Context(), id)
	})

	if err := g.Confirm(h.password(c, req.Password)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// UploadPhoto converts an uploaded file into the data URI the form
// attaches to its submission. PDFs are rendered to a PNG first page.
func (h *Handler) UploadPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxPhotoBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	uri, err := debt.PhotoFromFile(content, h.maxPhotoBytes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("Photo converted",
		zap.String("filename", header.Filename),
		zap.Int("bytes", len(content)))
	c.JSON(http.StatusOK, gin.H{"fotoDataUri": uri})
}

// StreamDebts is the change stream: an SSE connection that receives the
// full collection immediately and again after every mutation.
func (h *Handler) StreamDebts(c *gin.Context) {
	snapshots, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// Load the initial snapshot before committing to the event-stream
	// content type, so a failure still answers as plain JSON.
	initial, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("snapshot", snapshotPayload(initial))
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case debts, ok := <-snapshots:
			if !ok {
				return
			}
			c.SSEvent("snapshot", snapshotPayload(debts))
			c.Writer.Flush()
		}
	}
}

// ExportDebts streams the ledger as an xlsx attachment.
func (h *Handler) ExportDebts(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("kasbon-%s.xlsx", time.Now().Format(entity.DateLayout))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.excel.Write(c.Writer, result.Items); err != nil {
		h.logger.Error("Failed to stream export", zap.Error(err))
	}
}

// password resolves the action password from the header, falling back to
// the request body field.
func (h *Handler) password(c *gin.Context, bodyPassword string) string {
	if v := c.GetHeader(passwordHeader); v != "" {
		return v
	}
	return bodyPassword
}

// respondError maps domain errors to HTTP status codes. Store failures
// surface as-is in the log but reach the client as a generic notice.
func (h *Handler) respondError(c *gin.Context, err error) {
	var validationErr *debt.ValidationError
	var tooLarge *debt.FileTooLargeError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": tooLarge.Error()})
	case errors.Is(err, debt.ErrUnsupportedMedia), errors.Is(err, debt.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gate.ErrWrongSecret):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong action password"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "debt not found"})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// snapshotPayload is what goes over the wire per SSE event.
func snapshotPayload(debts []entity.Debt) gin.H {
	return gin.H{
		"items":            debts,
		"totalOutstanding": entity.OutstandingTotal(debts),
	}
}

func errorMessages(errs []error) []string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return messages
}
