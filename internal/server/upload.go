// upload.go - Operator file upload: multipart decode, extension check,
// blob write, then metadata insert, in that order.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// uploadResponse is the JSON returned after a successful upload.
type uploadResponse struct {
	Message string `json:"message"`
	FileID  string `json:"file_id"`
}

// maxUploadBytes reads the DD_MAX_UPLOAD_BYTES environment variable and
// returns the maximum allowed upload size in bytes. Returns 0 if not set
// (meaning no limit). Returns an error if the value cannot be parsed.
func maxUploadBytes() (int64, error) {
	raw := os.Getenv("DD_MAX_UPLOAD_BYTES")
	if raw == "" {
		return 0, nil // no limit configured
	}
	return strconv.ParseInt(raw, 10, 64)
}

// uploadHandler handles POST /ops/upload. The route is wrapped in
// requireRole(RoleOperator), so a session is always present in the
// context here.
//
// Required form field: file (the document, with its original filename).
// The filename must end in .pptx, .docx, or .xlsx; anything else is
// rejected before any state changes. The object key is the fresh record
// id plus the original base name, which keeps keys collision-free
// without trusting client paths.
func (s *Server) uploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		sess, ok := sessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusForbidden)
			return
		}

		limit, err := maxUploadBytes()
		if err != nil {
			http.Error(w, "server misconfigured", http.StatusInternalServerError)
			return
		}
		if limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}

		mr, err := r.MultipartReader()
		if err != nil {
			http.Error(w, "bad multipart", http.StatusBadRequest)
			return
		}

		var filePart io.Reader
		var filename string
		var contentType string

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				http.Error(w, "bad multipart", http.StatusBadRequest)
				return
			}
			defer func() { _ = part.Close() }()

			if part.FormName() != "file" {
				continue
			}

			filePart = part
			filename = path.Base(part.FileName())
			contentType = part.Header.Get("Content-Type")
			break
		}

		if filePart == nil || filename == "" || filename == "." || filename == "/" {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}

		if !allowedFileExtension(filename) {
			GetMetrics().RecordUploadError()
			s.audit.Record(r.Context(), AuditActionUpload, sess.UserID.String(), filename, getClientIP(r), false, ErrInvalidFileType.Error())
			http.Error(w, "invalid file type", http.StatusBadRequest)
			return
		}

		id := uuid.New()
		objectKey := "uploads/" + id.String() + "-" + filename

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()

		// Blob first, metadata second. A failed write must not leave a
		// record pointing at a missing object.
		if _, err := s.cfg.Blob.Write(ctx, objectKey, filePart, -1, contentType); err != nil {
			GetMetrics().RecordUploadError()
			rid := RequestIDFromContext(r.Context())
			log.Printf("rid=%s msg=blob_write_failed key=%s err=%v", rid, objectKey, err)

			// If MaxBytesReader tripped, surface 413.
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "upload failed", http.StatusBadGateway)
			return
		}

		rec := &FileRecord{
			ID:         id,
			Filename:   filename,
			ObjectKey:  objectKey,
			UploadedBy: sess.UserID,
		}
		if err := s.cfg.Files.CreateFile(r.Context(), rec); err != nil {
			rid := RequestIDFromContext(r.Context())
			log.Printf("rid=%s msg=file_record_failed id=%s err=%v", rid, id, err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		GetMetrics().RecordUpload()
		s.audit.Record(r.Context(), AuditActionUpload, sess.UserID.String(), filename, getClientIP(r), true, "")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(uploadResponse{
			Message: "file uploaded",
			FileID:  id.String(),
		})
	}
}
