package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/services"
	"github.com/senyabanana/creator-marketplace/internal/utils"

	"github.com/go-chi/chi/v5"
)

const (
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

// DeliverableHandler - структура для обработки запросов по результатам.
type DeliverableHandler struct {
	Workflow *services.Workflow
	Sessions SessionLoader
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewDeliverableHandler создает новый экземпляр DeliverableHandler.
func NewDeliverableHandler(workflow *services.Workflow, sessions SessionLoader, logger *log.Logger, timeout time.Duration) *DeliverableHandler {
	return &DeliverableHandler{
		Workflow: workflow,
		Sessions: sessions,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// limitedBody запоминает, что http.MaxBytesReader отказал в чтении.
// Ошибку разбора multipart-формы по ней не определить: mime/multipart
// возвращает свои ошибки и не всегда оборачивает ошибку чтения тела.
type limitedBody struct {
	io.ReadCloser
	exceeded bool
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		b.exceeded = true
	}
	return n, err
}

// SubmitDeliverable принимает multipart-форму с полями content, externalLink и file.
// Слишком большой файл отклоняется до обращения к хранилищу.
// Таймаут запроса отсчитывается после чтения тела: медленная загрузка
// допустимого файла не должна съедать время на сохранение.
func (h *DeliverableHandler) SubmitDeliverable(w http.ResponseWriter, r *http.Request) {
	sessionCtx, cancelSession := context.WithTimeout(r.Context(), h.Timeout)
	session, ok := loadSession(sessionCtx, w, r, h.Sessions, h.Logger)
	cancelSession()
	if !ok {
		return
	}
	creator, err := h.Workflow.Creator(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to submit deliverable")
		return
	}

	limit := h.Workflow.MaxUploadBytes
	if r.ContentLength > limit+multipartOverhead {
		utils.SendErrorResponse(w, http.StatusBadRequest, services.FileTooLargeMessage(limit))
		return
	}
	body := &limitedBody{ReadCloser: http.MaxBytesReader(w, r.Body, limit+multipartOverhead)}
	r.Body = body
	if err = r.ParseMultipartForm(multipartMemory); err != nil {
		h.Logger.Println(err)
		if body.exceeded {
			utils.SendErrorResponse(w, http.StatusBadRequest, services.FileTooLargeMessage(limit))
			return
		}
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.Logger.Println(err)
		}
	}()

	req := models.DeliverableRequest{
		ProposalID:   chi.URLParam(r, "proposalId"),
		Content:      r.FormValue("content"),
		ExternalLink: r.FormValue("externalLink"),
	}
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		req.File = &models.DeliverableFile{Name: header.Filename, Size: header.Size, Reader: file}
	case errors.Is(err, http.ErrMissingFile):
	default:
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	deliverable, err := creator.SubmitDeliverable(ctx, req)
	if err != nil {
		sendError(w, h.Logger, err, "failed to submit deliverable")
		return
	}
	sendJSON(w, h.Logger, http.StatusCreated, deliverable)
}

// ReviewDeliverable обрабатывает решение заказчика по результату.
func (h *DeliverableHandler) ReviewDeliverable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	client, err := h.Workflow.Client(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to review deliverable")
		return
	}

	var req models.ReviewRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deliverable, err := client.ReviewDeliverable(ctx, chi.URLParam(r, "deliverableId"), req)
	if err != nil {
		sendError(w, h.Logger, err, "failed to review deliverable")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, deliverable)
}

// DownloadDeliverable отдает файл результата как вложение.
func (h *DeliverableHandler) DownloadDeliverable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	role, err := h.Workflow.ForSession(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to download file")
		return
	}

	download, err := role.DownloadDeliverable(ctx, chi.URLParam(r, "deliverableId"))
	if err != nil {
		sendError(w, h.Logger, err, "failed to download file")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": download.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(download.Data); err != nil {
		h.Logger.Println(err)
	}
}
