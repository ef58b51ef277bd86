package http

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PUT /api/admin/courses/{courseID}/topic-order
// Body: { "topic_ids": ["t3", "t1", "t2"] }
//
// Replaces the explicit ordering for the course in one transaction. The
// ordering is all-or-nothing: assembly either uses these rows in full or
// falls back to natural topic order, so a partial replace must never be
// visible.
func SetTopicOrderHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		var req struct {
			TopicIDs []string `json:"topic_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}

		tx, err := dbh.BeginTx(r.Context(), nil)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(r.Context(),
			`DELETE FROM course_topic_order WHERE course_id=$1`, courseID); err != nil {
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		for i, topicID := range req.TopicIDs {
			if _, err := tx.ExecContext(r.Context(),
				`INSERT INTO course_topic_order (course_id, topic_id, position) VALUES ($1,$2,$3)`,
				courseID, topicID, i+1); err != nil {
				writeErr(w, http.StatusBadRequest, "invalid topic order")
				return
			}
		}
		if err := tx.Commit(); err != nil {
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"course_id": courseID, "count": len(req.TopicIDs)})
	}
}
