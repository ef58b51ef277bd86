package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/prepacademy/examsvc/internal/content"
	"github.com/prepacademy/examsvc/internal/exam"
	"github.com/prepacademy/examsvc/internal/grading"
	"github.com/prepacademy/examsvc/internal/rbac"
)

// GET /api/exams/classic — assemble one classic exam for the caller.
func ClassicExamHandler(asm *exam.Assembler, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		inst, err := asm.Assemble(r.Context(), userID)
		if err != nil {
			if exam.IsCallerError(err) {
				writeErr(w, http.StatusBadRequest, err.Error())
				return
			}
			log.WithError(err).WithField("user_id", userID).Error("exam assembly failed")
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, inst)
	}
}

type submittedAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type submitResult struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Score   float64 `json:"score"` // percentage
}

// POST /api/exams/classic/submit — grade each submitted answer
// all-or-nothing and record the per-question results.
func SubmitExamHandler(store exam.Store, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		var req struct {
			Answers []submittedAnswer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if len(req.Answers) == 0 {
			writeErr(w, http.StatusBadRequest, "no answers submitted")
			return
		}

		res := submitResult{}
		for _, ans := range req.Answers {
			q, err := store.QuestionByID(r.Context(), strings.TrimSpace(ans.QuestionID))
			if err != nil {
				log.WithError(err).Error("question lookup failed")
				writeErr(w, http.StatusInternalServerError, "internal error")
				return
			}
			if q == nil {
				continue // question deleted since assembly
			}
			v := grading.Grade(content.Decode(q.Options), q.Correct, ans.Answer)
			res.Total++
			if v.Correct {
				res.Correct++
			}
			err = store.RecordResult(r.Context(), exam.Result{
				ID:         uuid.NewString(),
				UserID:     userID,
				QuestionID: q.ID,
				TopicID:    q.TopicID,
				Submitted:  strings.TrimSpace(ans.Answer),
				Correct:    v.Correct,
			})
			if err != nil {
				log.WithError(err).Error("record result failed")
				writeErr(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		if res.Total > 0 {
			res.Score = float64(res.Correct) / float64(res.Total) * 100
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /api/dashboard — per-topic correct/attempted aggregates for the caller.
func DashboardHandler(store exam.Store, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		stats, err := store.TopicPerformance(r.Context(), userID)
		if err != nil {
			log.WithError(err).Error("dashboard query failed")
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"topics": stats})
	}
}
