package http

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prepacademy/examsvc/internal/storage"
)

// POST /api/admin/uploads — store question media and hand back the canonical
// /uploads/... path the question's media_ref should use.
func UploadMediaHandler(bs storage.BlobStore, basePath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeErr(w, http.StatusBadRequest, "file required")
			return
		}
		defer f.Close()

		ext := strings.ToLower(path.Ext(hdr.Filename))
		name := uuid.NewString() + ext
		key := "exam-questions/" + name
		if _, err := bs.Put(key, f); err != nil {
			writeErr(w, http.StatusInternalServerError, "store error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"path": strings.TrimSuffix(basePath, "/") + "/" + name,
		})
	}
}

// GET /uploads/*  -> serves the blob at whatever follows /uploads/
func ServeUploadHandler(bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(path.Ext(key))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	}
}
