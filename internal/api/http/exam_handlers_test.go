package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/prepacademy/examsvc/internal/content"
	"github.com/prepacademy/examsvc/internal/exam"
	"github.com/prepacademy/examsvc/internal/rbac"
)

type fakeStore struct {
	course    string
	courseErr error
	topics    []string
	questions map[string]*exam.Question // topicID -> question
	byID      map[string]*exam.Question
	sampleErr error
	results   []exam.Result
	stats     []exam.TopicStat
}

func (f *fakeStore) CourseForUser(ctx context.Context, userID string) (string, error) {
	if f.courseErr != nil {
		return "", f.courseErr
	}
	return f.course, nil
}
func (f *fakeStore) TopicOrder(ctx context.Context, courseID string) ([]string, error) {
	return nil, nil
}
func (f *fakeStore) TopicsForCourse(ctx context.Context, courseID string) ([]string, error) {
	return f.topics, nil
}
func (f *fakeStore) RandomActiveQuestion(ctx context.Context, topicID string) (*exam.Question, error) {
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	return f.questions[topicID], nil
}
func (f *fakeStore) QuestionByID(ctx context.Context, id string) (*exam.Question, error) {
	return f.byID[id], nil
}
func (f *fakeStore) RecordResult(ctx context.Context, res exam.Result) error {
	f.results = append(f.results, res)
	return nil
}
func (f *fakeStore) TopicPerformance(ctx context.Context, userID string) ([]exam.TopicStat, error) {
	return f.stats, nil
}

func discardLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestClassicExamHandler(t *testing.T) {
	fs := &fakeStore{
		course: "c1",
		topics: []string{"t1"},
		questions: map[string]*exam.Question{
			"t1": {
				ID:       "q1",
				TopicID:  "t1",
				MediaRef: "pic.png",
				Options:  `{"A":"Paris","B":"London"}`,
				Correct:  "B",
				Active:   true,
			},
		},
	}
	asm := exam.NewAssembler(fs, content.NewPathResolver("/uploads/exam-questions", "5000"), discardLog())
	h := ClassicExamHandler(asm, discardLog())

	req := httptest.NewRequest("GET", "/api/exams/classic", nil)
	req = req.WithContext(rbac.WithSubject(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var inst exam.Instance
	if err := json.Unmarshal(rec.Body.Bytes(), &inst); err != nil {
		t.Fatal(err)
	}
	if inst.CourseID != "c1" || inst.Total != 1 {
		t.Fatalf("instance %+v", inst)
	}
	e := inst.Questions[0]
	if e.ContentValue != "/uploads/exam-questions/pic.png" || e.CorrectAnswer != "B" {
		t.Fatalf("entry %+v", e)
	}
}

func TestClassicExamHandlerCallerErrors(t *testing.T) {
	tests := []struct {
		name    string
		store   *fakeStore
		wantMsg string
	}{
		{"no course", &fakeStore{courseErr: exam.ErrNoCourse}, "no course assigned"},
		{"no topics", &fakeStore{course: "c1"}, "no topics configured for course"},
		{"no questions", &fakeStore{course: "c1", topics: []string{"t1"}}, "no active exam questions found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			asm := exam.NewAssembler(tc.store, content.NewPathResolver("/uploads/exam-questions", "5000"), discardLog())
			req := httptest.NewRequest("GET", "/api/exams/classic", nil)
			req = req.WithContext(rbac.WithSubject(req.Context(), "u1"))
			rec := httptest.NewRecorder()
			ClassicExamHandler(asm, discardLog())(rec, req)

			if rec.Code != 400 {
				t.Fatalf("status %d", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["error"] != tc.wantMsg {
				t.Fatalf("error %q, want %q", body["error"], tc.wantMsg)
			}
		})
	}
}

func TestClassicExamHandlerStoreFailure(t *testing.T) {
	fs := &fakeStore{
		course:    "c1",
		topics:    []string{"t1"},
		sampleErr: errors.New("pool exhausted"),
	}
	asm := exam.NewAssembler(fs, content.NewPathResolver("/uploads/exam-questions", "5000"), discardLog())
	req := httptest.NewRequest("GET", "/api/exams/classic", nil)
	req = req.WithContext(rbac.WithSubject(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	ClassicExamHandler(asm, discardLog())(rec, req)

	if rec.Code != 500 {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal error") {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestSubmitExamHandler(t *testing.T) {
	fs := &fakeStore{
		byID: map[string]*exam.Question{
			"q1": {ID: "q1", TopicID: "t1", Options: `{"A":"Paris","B":"London"}`, Correct: "B"},
			"q2": {ID: "q2", TopicID: "t2", Options: `["yes","no"]`, Correct: "A"},
		},
	}
	body := `{"answers":[
		{"questionId":"q1","answer":"London"},
		{"questionId":"q2","answer":"no"},
		{"questionId":"gone","answer":"whatever"}
	]}`
	req := httptest.NewRequest("POST", "/api/exams/classic/submit", strings.NewReader(body))
	req = req.WithContext(rbac.WithSubject(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	SubmitExamHandler(fs, discardLog())(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var res submitResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	// q1 correct, q2 wrong ("A" resolves to "yes"), unknown question skipped
	if res.Total != 2 || res.Correct != 1 || res.Score != 50 {
		t.Fatalf("result %+v", res)
	}
	if len(fs.results) != 2 {
		t.Fatalf("recorded %d results", len(fs.results))
	}
	if fs.results[0].UserID != "u1" || !fs.results[0].Correct {
		t.Fatalf("first result %+v", fs.results[0])
	}
}

func TestSubmitExamHandlerEmpty(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/exams/classic/submit", strings.NewReader(`{"answers":[]}`))
	req = req.WithContext(rbac.WithSubject(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	SubmitExamHandler(&fakeStore{}, discardLog())(rec, req)
	if rec.Code != 400 {
		t.Fatalf("status %d", rec.Code)
	}
}
