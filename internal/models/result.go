package models

// API payloads exchanged with the web layer.

type StartSessionRequest struct {
	Role          string `json:"role" form:"role" validate:"required,min=2,max=120"`
	QuestionCount int    `json:"question_count" form:"question_count" validate:"omitempty,min=1,max=20"`
}

type StartSessionResponse struct {
	SessionID      string         `json:"session_id"`
	Role           string         `json:"role"`
	TotalQuestions int            `json:"total_questions"`
	Question       *Question      `json:"question,omitempty"`
	Profile        *ResumeProfile `json:"profile,omitempty"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type QuestionResponse struct {
	Question       *Question `json:"question,omitempty"`
	QuestionNumber int       `json:"question_number,omitempty"`
	TotalQuestions int       `json:"total_questions"`
	Progress       float64   `json:"progress"`
	Completed      bool      `json:"completed"`
}

type SubmitAnswerResponse struct {
	Evaluation   Evaluation `json:"evaluation"`
	NextQuestion *Question  `json:"next_question,omitempty"`
	Completed    bool       `json:"completed"`
	Transcript   string     `json:"transcript,omitempty"`
}

type SessionStateResponse struct {
	SessionID      string       `json:"session_id"`
	Role           string       `json:"role"`
	State          string       `json:"state"`
	CurrentIndex   int          `json:"current_index"`
	TotalQuestions int          `json:"total_questions"`
	Questions      []Question   `json:"questions"`
	Evaluations    []Evaluation `json:"evaluations"`
}
