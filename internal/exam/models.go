package exam

import "github.com/prepacademy/examsvc/internal/content"

// ContentTypeImage is the only content type classic exams carry today;
// every question is rendered from an uploaded image.
const ContentTypeImage = "image"

// Question is a row as stored, before any normalization. MediaRef, Options
// and Correct keep whatever shape the authoring environment wrote; the
// assembly pipeline canonicalizes them on the way out.
type Question struct {
	ID       string
	TopicID  string
	MediaRef string // absolute URL, host-qualified path or bare filename
	Options  string // JSON array, label->text object, or wrapped string
	Correct  string // literal answer text or a single letter A-Z
	Active   bool
}

// Entry is one normalized question inside an assembled exam. CorrectAnswer
// carries the raw stored marker; it is resolved against AnswerOptions at
// grading time, not at assembly time.
type Entry struct {
	QuestionID    string          `json:"id"`
	ContentType   string          `json:"contentType"`
	ContentValue  string          `json:"contentValue"`
	AnswerOptions content.Options `json:"answerOptions"`
	CorrectAnswer string          `json:"correctAnswer"`
}

// Instance is a fully assembled classic exam. It lives for a single
// request/response and is never persisted.
type Instance struct {
	CourseID  string  `json:"courseId"`
	Total     int     `json:"total"`
	Questions []Entry `json:"questions"`
}

// Result records one graded answer.
type Result struct {
	ID         string
	UserID     string
	QuestionID string
	TopicID    string
	Submitted  string
	Correct    bool
}

// TopicStat is a per-topic performance aggregate for a student dashboard.
type TopicStat struct {
	TopicID   string `json:"topicId"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
}
