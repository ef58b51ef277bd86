package exam

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/prepacademy/examsvc/internal/content"
)

// Caller-state errors: recoverable only by changing data or configuration,
// surfaced to the caller with their message text.
var (
	ErrNoCourse    = errors.New("no course assigned")
	ErrNoTopics    = errors.New("no topics configured for course")
	ErrNoQuestions = errors.New("no active exam questions found")
)

// Assembler builds one classic exam instance per request: resolve the
// caller's course, resolve topic order, sample one active question per
// topic, normalize options and media references. Each request runs the
// pipeline independently; there is no shared mutable state and no retry —
// any failing step aborts the whole assembly.
type Assembler struct {
	store Store
	paths *content.PathResolver
	log   logrus.FieldLogger
}

func NewAssembler(store Store, paths *content.PathResolver, log logrus.FieldLogger) *Assembler {
	return &Assembler{store: store, paths: paths, log: log}
}

// OrderedTopics resolves the sequence in which a course's topics are
// visited. An explicit ordering, when present, is used in full; otherwise
// all topics fall back to natural id order. The two are never merged. A
// failing explicit-order read is non-fatal (the ordering table is an
// optional feature and may not exist on older deployments); a failing
// fallback read is not.
func (a *Assembler) OrderedTopics(ctx context.Context, courseID string) ([]string, error) {
	ordered, err := a.store.TopicOrder(ctx, courseID)
	if err != nil {
		a.log.WithError(err).WithField("course_id", courseID).
			Warn("topic order lookup failed, falling back to natural order")
	}
	if err == nil && len(ordered) > 0 {
		return ordered, nil
	}
	topics, err := a.store.TopicsForCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("topics for course %s: %w", courseID, err)
	}
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	return topics, nil
}

// Assemble builds the exam for one student. Topics that currently have no
// active question are skipped, so the exam may have fewer entries than the
// course has topics; an exam with zero entries is an error.
func (a *Assembler) Assemble(ctx context.Context, userID string) (*Instance, error) {
	courseID, err := a.store.CourseForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	topics, err := a.OrderedTopics(ctx, courseID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(topics))
	for _, topicID := range topics {
		q, err := a.store.RandomActiveQuestion(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("sample question for topic %s: %w", topicID, err)
		}
		if q == nil {
			continue
		}
		entries = append(entries, Entry{
			QuestionID:    q.ID,
			ContentType:   ContentTypeImage,
			ContentValue:  a.paths.Normalize(q.MediaRef),
			AnswerOptions: content.Decode(q.Options),
			// The raw marker travels with the entry; it is resolved against
			// the options at grading time.
			CorrectAnswer: q.Correct,
		})
	}
	if len(entries) == 0 {
		return nil, ErrNoQuestions
	}
	return &Instance{CourseID: courseID, Total: len(entries), Questions: entries}, nil
}

// IsCallerError reports whether err is one of the caller-state failures
// that map to a 400 rather than a 500.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrNoCourse) || errors.Is(err, ErrNoTopics) || errors.Is(err, ErrNoQuestions)
}
