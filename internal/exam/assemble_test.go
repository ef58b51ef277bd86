package exam

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/prepacademy/examsvc/internal/content"
)

/* ---------------- in-memory fake that satisfies Store ---------------- */

type fakeStore struct {
	course    string
	courseErr error

	order    []string
	orderErr error

	topics    []string
	topicsErr error

	questions map[string]*Question // topicID -> question
	sampleErr error
	sampled   []string // topic ids in sampling order

	results []Result
}

func (f *fakeStore) CourseForUser(ctx context.Context, userID string) (string, error) {
	if f.courseErr != nil {
		return "", f.courseErr
	}
	return f.course, nil
}

func (f *fakeStore) TopicOrder(ctx context.Context, courseID string) ([]string, error) {
	return f.order, f.orderErr
}

func (f *fakeStore) TopicsForCourse(ctx context.Context, courseID string) ([]string, error) {
	return f.topics, f.topicsErr
}

func (f *fakeStore) RandomActiveQuestion(ctx context.Context, topicID string) (*Question, error) {
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	f.sampled = append(f.sampled, topicID)
	return f.questions[topicID], nil
}

func (f *fakeStore) QuestionByID(ctx context.Context, id string) (*Question, error) {
	for _, q := range f.questions {
		if q != nil && q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) RecordResult(ctx context.Context, res Result) error {
	f.results = append(f.results, res)
	return nil
}

func (f *fakeStore) TopicPerformance(ctx context.Context, userID string) ([]TopicStat, error) {
	return nil, nil
}

func testAssembler(store Store) *Assembler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAssembler(store, content.NewPathResolver("/uploads/exam-questions", "5000"), log)
}

func q(id, topic string) *Question {
	return &Question{
		ID:       id,
		TopicID:  topic,
		MediaRef: id + ".png",
		Options:  `{"A":"one","B":"two"}`,
		Correct:  "A",
		Active:   true,
	}
}

/* ---------------- topic order resolution ---------------- */

func TestOrderedTopicsExplicitUsedInFull(t *testing.T) {
	fs := &fakeStore{
		order:  []string{"t3", "t1", "t2"},
		topics: []string{"t1", "t2", "t3"},
	}
	got, err := testAssembler(fs).OrderedTopics(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"t3", "t1", "t2"}) {
		t.Fatalf("explicit order not honored: %v", got)
	}
}

func TestOrderedTopicsFallsBackOnEmpty(t *testing.T) {
	fs := &fakeStore{topics: []string{"t1", "t2"}}
	got, err := testAssembler(fs).OrderedTopics(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"t1", "t2"}) {
		t.Fatalf("fallback order: %v", got)
	}
}

func TestOrderedTopicsFallsBackOnError(t *testing.T) {
	// The ordering table may not exist on older deployments; the read
	// failing must not fail the exam.
	fs := &fakeStore{
		orderErr: errors.New("no such table: course_topic_order"),
		topics:   []string{"t1", "t2"},
	}
	got, err := testAssembler(fs).OrderedTopics(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"t1", "t2"}) {
		t.Fatalf("fallback order: %v", got)
	}
}

func TestOrderedTopicsNoTopics(t *testing.T) {
	fs := &fakeStore{}
	_, err := testAssembler(fs).OrderedTopics(context.Background(), "c1")
	if !errors.Is(err, ErrNoTopics) {
		t.Fatalf("want ErrNoTopics, got %v", err)
	}
}

func TestOrderedTopicsFallbackFailureIsFatal(t *testing.T) {
	boom := errors.New("connection reset")
	fs := &fakeStore{topicsErr: boom}
	_, err := testAssembler(fs).OrderedTopics(context.Background(), "c1")
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped store error, got %v", err)
	}
	if IsCallerError(err) {
		t.Fatal("store failure must not be a caller error")
	}
}

/* ---------------- assembly pipeline ---------------- */

func TestAssembleSamplesInExplicitOrder(t *testing.T) {
	fs := &fakeStore{
		course: "c1",
		order:  []string{"t3", "t1", "t2"},
		topics: []string{"t1", "t2", "t3"},
		questions: map[string]*Question{
			"t1": q("q1", "t1"),
			"t2": q("q2", "t2"),
			"t3": q("q3", "t3"),
		},
	}
	inst, err := testAssembler(fs).Assemble(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fs.sampled, []string{"t3", "t1", "t2"}) {
		t.Fatalf("sampled order %v, want explicit order, never a merge", fs.sampled)
	}
	ids := []string{}
	for _, e := range inst.Questions {
		ids = append(ids, e.QuestionID)
	}
	if !reflect.DeepEqual(ids, []string{"q3", "q1", "q2"}) {
		t.Fatalf("entry order %v", ids)
	}
	if inst.CourseID != "c1" || inst.Total != 3 {
		t.Fatalf("instance header: %+v", inst)
	}
}

func TestAssembleNormalizesEntries(t *testing.T) {
	fs := &fakeStore{
		course: "c1",
		topics: []string{"t1"},
		questions: map[string]*Question{
			"t1": {
				ID:       "q1",
				TopicID:  "t1",
				MediaRef: "https://old-host.example/files/xyz.jpg",
				Options:  `{"B":"London","A":"Paris"}`,
				Correct:  "B",
				Active:   true,
			},
		},
	}
	inst, err := testAssembler(fs).Assemble(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	e := inst.Questions[0]
	if e.ContentType != ContentTypeImage {
		t.Fatalf("content type %q", e.ContentType)
	}
	if e.ContentValue != "/uploads/exam-questions/xyz.jpg" {
		t.Fatalf("content value %q", e.ContentValue)
	}
	if !reflect.DeepEqual(e.AnswerOptions, content.Options{"London", "Paris"}) {
		t.Fatalf("options %v, want document order preserved", e.AnswerOptions)
	}
	// the marker stays raw; grading resolves it later
	if e.CorrectAnswer != "B" {
		t.Fatalf("correct answer %q, want raw marker", e.CorrectAnswer)
	}
}

func TestAssembleSkipsEmptyTopics(t *testing.T) {
	fs := &fakeStore{
		course: "c1",
		topics: []string{"t1", "t2", "t3"},
		questions: map[string]*Question{
			"t1": q("q1", "t1"),
			"t3": q("q3", "t3"),
		},
	}
	inst, err := testAssembler(fs).Assemble(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if inst.Total != 2 || len(inst.Questions) != 2 {
		t.Fatalf("want 2 entries (t2 skipped), got %d", inst.Total)
	}
}

func TestAssembleFailsWithNoQuestions(t *testing.T) {
	fs := &fakeStore{course: "c1", topics: []string{"t1", "t2"}}
	inst, err := testAssembler(fs).Assemble(context.Background(), "u1")
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("want ErrNoQuestions, got %v", err)
	}
	if inst != nil {
		t.Fatal("no partial output on failure")
	}
}

func TestAssembleNoCourse(t *testing.T) {
	fs := &fakeStore{courseErr: ErrNoCourse}
	_, err := testAssembler(fs).Assemble(context.Background(), "u1")
	if !errors.Is(err, ErrNoCourse) {
		t.Fatalf("want ErrNoCourse, got %v", err)
	}
}

func TestAssembleSampleFailureAborts(t *testing.T) {
	boom := errors.New("query timeout")
	fs := &fakeStore{
		course:    "c1",
		topics:    []string{"t1"},
		sampleErr: boom,
	}
	_, err := testAssembler(fs).Assemble(context.Background(), "u1")
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped sample error, got %v", err)
	}
	if IsCallerError(err) {
		t.Fatal("sampling failure must map to a server error")
	}
}
