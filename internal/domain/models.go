package domain

import "time"

// Answer letters accepted for a question.
const (
	LetterA = "A"
	LetterB = "B"
	LetterC = "C"
	LetterD = "D"
)

// ValidLetter reports whether s is one of A, B, C or D.
func ValidLetter(s string) bool {
	switch s {
	case LetterA, LetterB, LetterC, LetterD:
		return true
	}
	return false
}

// Question models an MCQ question with four options and one correct letter.
type Question struct {
	ID            int64  `json:"id"`
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
}

// Option returns the option text for a letter, or "" for an unknown letter.
func (q Question) Option(letter string) string {
	switch letter {
	case LetterA:
		return q.OptionA
	case LetterB:
		return q.OptionB
	case LetterC:
		return q.OptionC
	case LetterD:
		return q.OptionD
	}
	return ""
}

// QuestionState is the per-question bookkeeping of an active attempt.
type QuestionState struct {
	Answered       bool   `json:"answered"`
	Marked         bool   `json:"marked"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// User is either a participant (created on first join) or an administrator.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// AdminAccount is the public view of an administrator.
type AdminAccount struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Channel groups quiz attempts behind a join code.
type Channel struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	AdminID   int64     `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant is one user's attempt in one channel.
type Participant struct {
	ID            int64
	UserID        int64
	ChannelID     int64
	Score         int
	QuizStartedAt time.Time
	QuizSubmitted bool
}

// Answer is a stored answer of a participant.
type Answer struct {
	ID             int64
	ParticipantID  int64
	QuestionID     int64
	SelectedAnswer string
	IsCorrect      bool
}

// ParticipantRecord joins a participant with its user and channel names.
type ParticipantRecord struct {
	Participant
	Username    string
	ChannelName string
	ChannelCode string
}

// JoinResult is returned to a participant entering a channel.
type JoinResult struct {
	Message       string    `json:"message"`
	Channel       string    `json:"channel"`
	QuizStartedAt time.Time `json:"quiz_started_at"`
}

// AnswerOutcome is returned for each submitted answer.
type AnswerOutcome struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

// SubmitOutcome is returned when an attempt is finalized.
type SubmitOutcome struct {
	Message    string `json:"message"`
	FinalScore int    `json:"final_score"`
}

// AnswerSummary is one answer inside a results listing.
type AnswerSummary struct {
	QuestionID     int64  `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

// ResultSummary is one participant's row in the results listing.
type ResultSummary struct {
	Username       string          `json:"username"`
	Channel        string          `json:"channel"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	Answers        []AnswerSummary `json:"answers"`
}

// AnswerDetail is an answer joined with its question for reporting.
type AnswerDetail struct {
	QuestionText   string `json:"question_text"`
	OptionA        string `json:"option_a"`
	OptionB        string `json:"option_b"`
	OptionC        string `json:"option_c"`
	OptionD        string `json:"option_d"`
	CorrectAnswer  string `json:"correct_answer"`
	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

// ParticipantReport is the full result of one participant.
type ParticipantReport struct {
	Username       string         `json:"username"`
	Channel        string         `json:"channel"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Answers        []AnswerDetail `json:"answers"`
}

// StandingsEntry is a snapshot-friendly view of a participant in a channel.
type StandingsEntry struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Submitted bool   `json:"submitted"`
}

// Standings captures the ordered scoreboard of a channel.
type Standings struct {
	ChannelCode string           `json:"channelCode"`
	Entries     []StandingsEntry `json:"entries"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}
