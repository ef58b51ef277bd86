package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/prepacademy/examsvc/internal/content"
)

// Authoring CRUD. Questions are written in whatever shape the admin form
// sends (object options, letter markers); the assembly engine canonicalizes
// on the way out, so these handlers only enforce the authoring guard and
// store the raw value.

type questionReq struct {
	TopicID  string          `json:"topic_id" validate:"required"`
	MediaRef string          `json:"media_ref"`
	Options  json.RawMessage `json:"options" validate:"required"`
	Correct  string          `json:"correct_answer" validate:"required"`
	Active   *bool           `json:"active"`
}

// check applies request validation plus the authoring guard: options must
// be a label->text object with at least one key, and the correct marker must
// be one of those labels. Legacy rows with literal-text markers predate this
// guard; Decode and Resolve still accept them on the way out.
func (q *questionReq) check(v *validator.Validate) error {
	if err := v.Struct(q); err != nil {
		return err
	}
	return content.ValidateAuthored(string(q.Options), q.Correct)
}

func CreateQuestionHandler(dbh *sql.DB, v *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := req.check(v); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}
		id := uuid.NewString()
		_, err := dbh.ExecContext(r.Context(),
			`INSERT INTO questions (id, topic_id, media_ref, options_json, correct_answer, active, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, req.TopicID, strings.TrimSpace(req.MediaRef), string(req.Options),
			strings.TrimSpace(req.Correct), active, time.Now().Unix())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func UpdateQuestionHandler(dbh *sql.DB, v *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		var req questionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := req.check(v); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := dbh.ExecContext(r.Context(),
			`UPDATE questions SET topic_id=$1, media_ref=$2, options_json=$3, correct_answer=$4 WHERE id=$5`,
			req.TopicID, strings.TrimSpace(req.MediaRef), string(req.Options),
			strings.TrimSpace(req.Correct), id)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeErr(w, http.StatusNotFound, "question not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

func DeleteQuestionHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		res, err := dbh.ExecContext(r.Context(), `DELETE FROM questions WHERE id=$1`, id)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeErr(w, http.StatusNotFound, "question not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

// PATCH /api/admin/questions/{questionID}/active  { "active": false }
// Inactive questions are never sampled into an exam.
func ToggleQuestionActiveHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		var req struct {
			Active *bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
			writeErr(w, http.StatusBadRequest, "active required")
			return
		}
		res, err := dbh.ExecContext(r.Context(),
			`UPDATE questions SET active=$1 WHERE id=$2`, *req.Active, id)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeErr(w, http.StatusNotFound, "question not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": *req.Active})
	}
}

func ListQuestionsHandler(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topicID := strings.TrimSpace(r.URL.Query().Get("topic_id"))
		var (
			rows *sql.Rows
			err  error
		)
		if topicID == "" {
			rows, err = dbh.QueryContext(r.Context(),
				`SELECT id, topic_id, media_ref, options_json, correct_answer, active FROM questions ORDER BY created_at DESC`)
		} else {
			rows, err = dbh.QueryContext(r.Context(),
				`SELECT id, topic_id, media_ref, options_json, correct_answer, active FROM questions WHERE topic_id=$1 ORDER BY created_at DESC`,
				topicID)
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		defer rows.Close()

		out := []map[string]any{}
		for rows.Next() {
			var id, topic, media, opts, correct string
			var active bool
			if err := rows.Scan(&id, &topic, &media, &opts, &correct, &active); err != nil {
				writeErr(w, http.StatusInternalServerError, "db error")
				return
			}
			out = append(out, map[string]any{
				"id":             id,
				"topic_id":       topic,
				"media_ref":      media,
				"options":        content.Decode(opts),
				"correct_answer": correct,
				"active":         active,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
