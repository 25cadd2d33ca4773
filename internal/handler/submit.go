package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/formrelay/internal/email"
	"github.com/formrelay/internal/form"
	"github.com/formrelay/internal/media"
	"github.com/formrelay/internal/upload"
)

// Mailer dispatches a composed message to the mail transport.
type Mailer interface {
	Send(email.Message) error
}

// SubmitHandler runs the shared submission pipeline for one form variant:
// collect, validate, materialize, compose, dispatch, clean up, respond.
type SubmitHandler struct {
	BaseHandler
	schema        form.Schema
	validator     *form.Validator
	store         *upload.Store
	mailer        Mailer
	subject       string
	stripMetadata bool
}

func NewSubmitHandler(logger *slog.Logger, schema form.Schema, validator *form.Validator, store *upload.Store, mailer Mailer, subject string, stripMetadata bool) *SubmitHandler {
	return &SubmitHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		schema:        schema,
		validator:     validator,
		store:         store,
		mailer:        mailer,
		subject:       subject,
		stripMetadata: stripMetadata,
	}
}

// Handle processes one submission.
func (h *SubmitHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, response{Success: false, Message: "Method not allowed"})
		return
	}

	// Enough room for every slot at the configured ceiling plus the text
	// fields.
	maxForm := h.validator.MaxBytes*int64(len(h.schema.Slots)) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxForm)
	if err := r.ParseMultipartForm(maxForm); err != nil {
		h.writeJSON(w, http.StatusOK, response{Success: false, Message: "Invalid or oversized form submission"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	fields, uploads, res := h.validator.Validate(h.schema, r.MultipartForm.Value, r.MultipartForm.File)
	if !res.OK() {
		h.writeJSON(w, http.StatusOK, response{Success: false, Message: strings.Join(res.Errors, ", ")})
		return
	}

	attachments, paths, err := h.materialize(uploads)
	defer h.store.Cleanup(paths)
	if err != nil {
		h.logError(r, fmt.Errorf("materializing uploads: %w", err))
		h.writeJSON(w, http.StatusOK, response{Success: false, Message: genericErrorMessage})
		return
	}

	if err := h.mailer.Send(h.compose(fields, attachments)); err != nil {
		h.logError(r, fmt.Errorf("dispatching %s submission: %w", h.schema.Variant, err))
		h.writeJSON(w, http.StatusOK, response{Success: false, Message: h.schema.FailureMessage})
		return
	}

	h.writeJSON(w, http.StatusOK, response{Success: true, Message: h.schema.SuccessMessage})
}

// materialize moves each validated upload into durable storage, in slot
// order. On failure the returned paths still list everything created so far,
// so the caller's cleanup removes partial state.
func (h *SubmitHandler) materialize(uploads []form.Upload) ([]upload.Attachment, []string, error) {
	var attachments []upload.Attachment
	var paths []string

	for i, up := range uploads {
		f, err := up.Header.Open()
		if err != nil {
			return nil, paths, fmt.Errorf("opening %s: %w", up.Slot.Key, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, paths, fmt.Errorf("reading %s: %w", up.Slot.Key, err)
		}

		if h.stripMetadata {
			if stripped, err := media.StripMetadata(data, up.ContentType); err == nil {
				data = stripped
			} else {
				h.Logger.Warn("metadata strip failed, attaching original bytes",
					"slot", up.Slot.Key, "err", err)
			}
		}

		att, err := h.store.Save(i+1, up.Header.Filename, data, up.ContentType)
		if err != nil {
			return nil, paths, err
		}
		paths = append(paths, att.Path)
		attachments = append(attachments, att)
	}

	return attachments, paths, nil
}

func (h *SubmitHandler) compose(fields map[string]string, attachments []upload.Attachment) email.Message {
	bodyFields := make([]email.BodyField, 0, len(h.schema.Fields))
	for _, f := range h.schema.Fields {
		bodyFields = append(bodyFields, email.BodyField{Label: f.Label, Value: fields[f.Key]})
	}

	images := make([]email.BodyField, 0, len(attachments))
	for i, slot := range h.schema.Slots {
		images = append(images, email.BodyField{Label: slot.Label, Value: attachments[i].Filename})
	}

	return email.Message{
		Subject:     h.subject,
		HTMLBody:    email.RenderBody(h.schema.Title, bodyFields, images),
		Attachments: attachments,
	}
}
