package exam

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Store is the query surface the assembly and grading pipeline needs. Every
// method maps to a single parameterized query; a pooled connection is held
// for one query at a time, never across a whole assembly.
type Store interface {
	// CourseForUser returns the caller's assigned course, or ErrNoCourse.
	CourseForUser(ctx context.Context, userID string) (string, error)
	// TopicOrder returns the explicit per-course ordering, position ascending.
	// Zero rows means the course was never explicitly ordered.
	TopicOrder(ctx context.Context, courseID string) ([]string, error)
	// TopicsForCourse returns all of the course's topics in natural id order.
	TopicsForCourse(ctx context.Context, courseID string) ([]string, error)
	// RandomActiveQuestion picks one active question uniformly at random,
	// or (nil, nil) when the topic has none.
	RandomActiveQuestion(ctx context.Context, topicID string) (*Question, error)

	QuestionByID(ctx context.Context, id string) (*Question, error)
	RecordResult(ctx context.Context, res Result) error
	TopicPerformance(ctx context.Context, userID string) ([]TopicStat, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CourseForUser(ctx context.Context, userID string) (string, error) {
	var course sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT course_id FROM users WHERE id=$1`, userID).Scan(&course)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoCourse
	}
	if err != nil {
		return "", err
	}
	if !course.Valid || course.String == "" {
		return "", ErrNoCourse
	}
	return course.String, nil
}

func (s *SQLStore) TopicOrder(ctx context.Context, courseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic_id FROM course_topic_order WHERE course_id=$1 ORDER BY position ASC`,
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *SQLStore) TopicsForCourse(ctx context.Context, courseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM topics WHERE course_id=$1 ORDER BY id ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// RandomActiveQuestion delegates randomness to the store; RANDOM() works on
// both sqlite and postgres. Calls are independent and not reproducible.
func (s *SQLStore) RandomActiveQuestion(ctx context.Context, topicID string) (*Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, topic_id, media_ref, options_json, correct_answer, active
		   FROM questions
		  WHERE topic_id=$1 AND active
		  ORDER BY RANDOM() LIMIT 1`, topicID)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *SQLStore) QuestionByID(ctx context.Context, id string) (*Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, topic_id, media_ref, options_json, correct_answer, active
		   FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *SQLStore) RecordResult(ctx context.Context, res Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_results (id, user_id, question_id, topic_id, submitted, correct, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		res.ID, res.UserID, res.QuestionID, res.TopicID, res.Submitted, res.Correct, time.Now().Unix())
	return err
}

func (s *SQLStore) TopicPerformance(ctx context.Context, userID string) ([]TopicStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic_id,
		        COUNT(*),
		        SUM(CASE WHEN correct THEN 1 ELSE 0 END)
		   FROM exam_results
		  WHERE user_id=$1
		  GROUP BY topic_id
		  ORDER BY topic_id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TopicStat{}
	for rows.Next() {
		var st TopicStat
		if err := rows.Scan(&st.TopicID, &st.Attempted, &st.Correct); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanQuestion(row *sql.Row) (*Question, error) {
	var q Question
	if err := row.Scan(&q.ID, &q.TopicID, &q.MediaRef, &q.Options, &q.Correct, &q.Active); err != nil {
		return nil, err
	}
	return &q, nil
}
