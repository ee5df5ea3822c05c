package models

// Question is a starter prompt offered on the empty chat page.
type Question struct {
	ID           int64  `json:"id"`
	QuestionText string `json:"question_text"`
}
