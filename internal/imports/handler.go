package imports

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ssth/ssth-inventory/internal/platform/httpx"
	"github.com/ssth/ssth-inventory/internal/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Import kinds used for locks, audit rows and metrics.
const (
	KindItems = "items"
	KindPO    = "po"
)

// Auditor records completed imports.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Recorder observes import outcomes.
type Recorder interface {
	RecordImport(kind string, outcomes map[string]int, elapsed time.Duration)
}

// Handler serves the import endpoints.
type Handler struct {
	logger      *slog.Logger
	items       *ItemImporter
	orders      *POImporter
	lock        *ImportLock
	audit       Auditor
	metrics     Recorder
	requireUser func(http.Handler) http.Handler
	maxUpload   int64
}

// NewHandler builds Handler instance. audit and metrics may be nil.
func NewHandler(
	logger *slog.Logger,
	items *ItemImporter,
	orders *POImporter,
	lock *ImportLock,
	audit Auditor,
	metrics Recorder,
	requireUser func(http.Handler) http.Handler,
	maxUpload int64,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		items:       items,
		orders:      orders,
		lock:        lock,
		audit:       audit,
		metrics:     metrics,
		requireUser: requireUser,
		maxUpload:   maxUpload,
	}
}

// MountRoutes registers import routes. Preflight requests skip authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/import-items-excel", func(r chi.Router) {
		h.mountImport(r, h.importItems, h.itemTemplate)
	})
	r.Route("/import-po-excel", func(r chi.Router) {
		h.mountImport(r, h.importPurchaseOrders, h.poTemplate)
	})
}

func (h *Handler) mountImport(r chi.Router, importFn, templateFn http.HandlerFunc) {
	r.Use(cors)
	r.MethodNotAllowed(methodNotAllowed)
	r.Options("/", preflight)
	r.Options("/template", preflight)
	r.Group(func(r chi.Router) {
		if h.requireUser != nil {
			r.Use(h.requireUser)
		}
		r.Post("/", importFn)
		r.Get("/template", templateFn)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Content-Transfer-Encoding")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	httpx.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

type itemsResponse struct {
	Message string `json:"message"`
	ItemImportResult
}

type poResponse struct {
	Message string `json:"message"`
	POImportResult
	ElapsedMs int64 `json:"elapsedMs"`
}

func (h *Handler) importItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := h.readBody(w, r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	upload, err := ReadItemsUpload(r.Header.Get("Content-Type"), body, isBase64(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := ReadRows(upload.Spreadsheet)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	release, err := h.lock.Acquire(r.Context(), KindItems, body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	defer release()

	actor, _ := shared.ActorFromContext(r.Context())
	result := h.items.Import(r.Context(), rows, actor.UserID, upload.Images)
	elapsed := time.Since(start)

	h.logger.InfoContext(r.Context(), "item import completed",
		slog.Int("created", result.Created), slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped), slog.Int("images", result.ImageUploaded),
		slog.Duration("elapsed", elapsed))
	h.observe(KindItems, map[string]int{
		"created": result.Created, "updated": result.Updated, "skipped": result.Skipped,
	}, elapsed)
	h.record(r, actor, "IMPORT_ITEMS", "items", map[string]any{
		"created": result.Created, "updated": result.Updated,
		"skipped": result.Skipped, "imageUploaded": result.ImageUploaded,
	})

	httpx.JSON(w, http.StatusOK, itemsResponse{Message: "Import completed", ItemImportResult: result})
}

func (h *Handler) importPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := h.readBody(w, r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sheet, err := ReadPOUpload(r.Header.Get("Content-Type"), body, isBase64(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := ReadRows(sheet)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pos := GroupPORows(rows, time.Now())
	if len(pos) == 0 {
		httpx.Error(w, http.StatusBadRequest, MsgNoValidPOs)
		return
	}
	release, err := h.lock.Acquire(r.Context(), KindPO, sheet)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	defer release()

	actor, _ := shared.ActorFromContext(r.Context())
	result, err := h.orders.Import(r.Context(), pos, actor.UserID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "purchase order import aborted", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	elapsed := time.Since(start)

	h.logger.InfoContext(r.Context(), "purchase order import completed",
		slog.Int("total", result.Total), slog.Int("successful", result.Successful),
		slog.Int("failed", result.Failed), slog.Duration("elapsed", elapsed))
	h.observe(KindPO, map[string]int{"successful": result.Successful, "failed": result.Failed}, elapsed)
	h.record(r, actor, "IMPORT_PO", "purchase_order", map[string]any{
		"total": result.Total, "successful": result.Successful, "failed": result.Failed,
	})

	httpx.JSON(w, http.StatusOK, poResponse{
		Message:        "Import completed",
		POImportResult: result,
		ElapsedMs:      elapsed.Milliseconds(),
	})
}

func (h *Handler) itemTemplate(w http.ResponseWriter, r *http.Request) {
	h.serveTemplate(w, r, "items-import-template.xlsx", ItemTemplate)
}

func (h *Handler) poTemplate(w http.ResponseWriter, r *http.Request) {
	h.serveTemplate(w, r, "po-import-template.xlsx", POTemplate)
}

func (h *Handler) serveTemplate(w http.ResponseWriter, r *http.Request, filename string, build func() ([]byte, error)) {
	data, err := build()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "build import template", slog.String("file", filename), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	reader := io.Reader(r.Body)
	if h.maxUpload > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, httpx.NewStatusError(http.StatusRequestEntityTooLarge, "File too large")
		}
		return nil, badRequest("Unable to read request body")
	}
	if len(body) == 0 {
		return nil, badRequest(MsgFileUploadRequired)
	}
	return body, nil
}

func (h *Handler) observe(kind string, outcomes map[string]int, elapsed time.Duration) {
	if h.metrics != nil {
		h.metrics.RecordImport(kind, outcomes, elapsed)
	}
}

func (h *Handler) record(r *http.Request, actor shared.Actor, action, entity string, meta map[string]any) {
	if h.audit == nil {
		return
	}
	err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   entity,
		EntityID: importID(r),
		Meta:     meta,
		At:       time.Now(),
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "audit log write failed", slog.String("action", action), slog.Any("error", err))
	}
}

func isBase64(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("Content-Transfer-Encoding")), "base64")
}

// importID names the audit entity after the request id when one is set.
func importID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}
