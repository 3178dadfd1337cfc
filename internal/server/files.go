package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// fileView is one element of the GET /client/files response.
type fileView struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// listFilesHandler handles GET /client/files. The route is wrapped in
// requireRole(RoleClient). Every client sees every upload, in upload
// order; there is no pagination and no per-uploader filtering.
func (s *Server) listFilesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		records, err := s.cfg.Files.ListFiles(r.Context())
		if err != nil {
			log.Printf("rid=%s msg=list_files_failed err=%v", RequestIDFromContext(r.Context()), err)
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		out := make([]fileView, 0, len(records))
		for _, rec := range records {
			out = append(out, fileView{
				ID:         rec.ID.String(),
				Filename:   rec.Filename,
				UploadedBy: rec.UploadedBy.String(),
				CreatedAt:  rec.CreatedAt,
			})
		}

		GetMetrics().RecordList()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}
