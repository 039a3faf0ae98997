package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"timed-quiz-platform/internal/domain"
)

const uniqueViolation = "23505"

// Store implements app.Store on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func (s *Store) CreateChannel(ctx context.Context, ch domain.Channel) (domain.Channel, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO channels (name, code, admin_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		ch.Name, ch.Code, ch.AdminID, ch.CreatedAt,
	).Scan(&ch.ID)
	if constraint, ok := uniqueConstraint(err); ok {
		if constraint == "channels_code_key" {
			return domain.Channel{}, domain.ErrCodeTaken
		}
		return domain.Channel{}, domain.ErrChannelExists
	}
	if err != nil {
		return domain.Channel{}, fmt.Errorf("create channel: %w", err)
	}
	return ch, nil
}

const channelColumns = `id, name, code, admin_id, created_at`

func scanChannel(row pgx.Row) (domain.Channel, error) {
	var ch domain.Channel
	err := row.Scan(&ch.ID, &ch.Name, &ch.Code, &ch.AdminID, &ch.CreatedAt)
	return ch, err
}

func (s *Store) ChannelByCode(ctx context.Context, code string) (domain.Channel, error) {
	ch, err := scanChannel(s.pool.QueryRow(ctx, `SELECT `+channelColumns+` FROM channels WHERE code=$1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Channel{}, domain.ErrChannelNotFound
	}
	if err != nil {
		return domain.Channel{}, fmt.Errorf("load channel: %w", err)
	}
	return ch, nil
}

func (s *Store) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+channelColumns+` FROM channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Channel, 0)
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// DeleteChannel relies on ON DELETE CASCADE for participants and answers.
func (s *Store) DeleteChannel(ctx context.Context, id int64) (domain.Channel, error) {
	ch, err := scanChannel(s.pool.QueryRow(ctx, `DELETE FROM channels WHERE id=$1 RETURNING `+channelColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Channel{}, domain.ErrChannelNotFound
	}
	if err != nil {
		return domain.Channel{}, fmt.Errorf("delete channel: %w", err)
	}
	return ch, nil
}

func (s *Store) CountChannelsByAdmin(ctx context.Context, adminID int64) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM channels WHERE admin_id=$1`, adminID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count channels: %w", err)
	}
	return n, nil
}

const userColumns = `id, username, password_hash, is_admin, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	return u, err
}

func (s *Store) userBy(ctx context.Context, where string, arg any) (domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByName(ctx context.Context, username string) (domain.User, error) {
	return s.userBy(ctx, `username=$1`, username)
}

func (s *Store) UserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.userBy(ctx, `id=$1`, id)
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, is_admin, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		u.Username, u.PasswordHash, u.IsAdmin, u.CreatedAt,
	).Scan(&u.ID)
	if _, ok := uniqueConstraint(err); ok {
		return domain.User{}, domain.ErrUsernameTaken
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Store) ListAdmins(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()
	out := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

const questionColumns = `id, text, option_a, option_b, option_c, option_d, correct_answer`

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer)
	return q, err
}

func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) QuestionByID(ctx context.Context, id int64) (domain.Question, error) {
	q, err := scanQuestion(s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	return q, nil
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO questions (text, option_a, option_b, option_c, option_d, correct_answer)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer,
	).Scan(&q.ID)
	if _, ok := uniqueConstraint(err); ok {
		return domain.Question{}, domain.ErrQuestionExists
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE questions SET text=$1, option_a=$2, option_b=$3, option_c=$4, option_d=$5, correct_answer=$6 WHERE id=$7`,
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer, q.ID,
	)
	if _, ok := uniqueConstraint(err); ok {
		return domain.Question{}, domain.ErrQuestionExists
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var answered int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM answers WHERE question_id=$1`, id).Scan(&answered); err != nil {
		return fmt.Errorf("count answers: %w", err)
	}
	if answered > 0 {
		return domain.ErrQuestionAnswered
	}
	tag, err := tx.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return tx.Commit(ctx)
}

func (s *Store) Participant(ctx context.Context, userID, channelID int64) (domain.Participant, error) {
	var p domain.Participant
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, channel_id, score, quiz_started_at, quiz_submitted
		 FROM participants WHERE user_id=$1 AND channel_id=$2`,
		userID, channelID,
	).Scan(&p.ID, &p.UserID, &p.ChannelID, &p.Score, &p.QuizStartedAt, &p.QuizSubmitted)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("load participant: %w", err)
	}
	return p, nil
}

func (s *Store) SaveParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	if p.ID == 0 {
		err := s.pool.QueryRow(ctx,
			`INSERT INTO participants (user_id, channel_id, score, quiz_started_at, quiz_submitted)
			 VALUES ($1, $2, 0, $3, $4) RETURNING id, score`,
			p.UserID, p.ChannelID, p.QuizStartedAt, p.QuizSubmitted,
		).Scan(&p.ID, &p.Score)
		if err != nil {
			return domain.Participant{}, fmt.Errorf("create participant: %w", err)
		}
		return p, nil
	}
	err := s.pool.QueryRow(ctx,
		`UPDATE participants SET quiz_started_at=$1, quiz_submitted=$2 WHERE id=$3 RETURNING score`,
		p.QuizStartedAt, p.QuizSubmitted, p.ID,
	).Scan(&p.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("update participant: %w", err)
	}
	return p, nil
}

func (s *Store) RecordAnswer(ctx context.Context, a domain.Answer) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO answers (participant_id, question_id, selected_answer, is_correct)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (participant_id, question_id)
		 DO UPDATE SET selected_answer=EXCLUDED.selected_answer, is_correct=EXCLUDED.is_correct`,
		a.ParticipantID, a.QuestionID, a.SelectedAnswer, a.IsCorrect,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert answer: %w", err)
	}

	var score int
	err = tx.QueryRow(ctx,
		`UPDATE participants
		 SET score = (SELECT count(*) FROM answers WHERE participant_id=$1 AND is_correct)
		 WHERE id=$1 RETURNING score`,
		a.ParticipantID,
	).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrParticipantNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("recount score: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return score, nil
}

const participantRecordQuery = `
SELECT p.id, p.user_id, p.channel_id, p.score, p.quiz_started_at, p.quiz_submitted,
       u.username, c.name, c.code
FROM participants p
JOIN users u ON u.id = p.user_id
JOIN channels c ON c.id = p.channel_id`

func scanRecord(row pgx.Row) (domain.ParticipantRecord, error) {
	var r domain.ParticipantRecord
	err := row.Scan(&r.ID, &r.UserID, &r.ChannelID, &r.Score, &r.QuizStartedAt, &r.QuizSubmitted,
		&r.Username, &r.ChannelName, &r.ChannelCode)
	return r, err
}

func (s *Store) ListParticipants(ctx context.Context) ([]domain.ParticipantRecord, error) {
	rows, err := s.pool.Query(ctx, participantRecordQuery+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()
	out := make([]domain.ParticipantRecord, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LatestParticipant(ctx context.Context, userID int64) (domain.ParticipantRecord, error) {
	r, err := scanRecord(s.pool.QueryRow(ctx, participantRecordQuery+` WHERE p.user_id=$1 ORDER BY p.id DESC LIMIT 1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ParticipantRecord{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.ParticipantRecord{}, fmt.Errorf("load participant: %w", err)
	}
	return r, nil
}

func (s *Store) ListAnswers(ctx context.Context, participantID int64) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, participant_id, question_id, selected_answer, is_correct
		 FROM answers WHERE participant_id=$1 ORDER BY id`, participantID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Answer, 0)
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.ParticipantID, &a.QuestionID, &a.SelectedAnswer, &a.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ClearResults deletes channels; participants and answers follow by cascade.
func (s *Store) ClearResults(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, stmt := range []string{`DELETE FROM answers`, `DELETE FROM participants`, `DELETE FROM channels`} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("clear results: %w", err)
		}
	}
	return tx.Commit(ctx)
}
