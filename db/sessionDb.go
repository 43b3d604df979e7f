package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"examprep/models"

	"github.com/lib/pq"
)

type SessionRepository interface {
	SaveSession(record *models.SessionRecord) error
	GetSession(id string) (*models.SessionRecord, error)
	ListBySubject(subject string, limit int) ([]*models.SessionRecord, error)
}

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(databaseURL string) (*PostgresSessionRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSessionRepository{db: db}, nil
}

// SaveSession writes the full session record once. Records are immutable
// after this point; a duplicate id is a no-op.
func (r *PostgresSessionRepository) SaveSession(record *models.SessionRecord) error {
	questionsJSON, err := json.Marshal(record.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	answersJSON, err := json.Marshal(record.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	autoJSON, err := json.Marshal(record.AutoResults)
	if err != nil {
		return fmt.Errorf("failed to marshal auto results: %w", err)
	}
	feedbackJSON, err := json.Marshal(record.AIFeedback)
	if err != nil {
		return fmt.Errorf("failed to marshal AI feedback: %w", err)
	}
	breakdownJSON, err := json.Marshal(record.TopicBreakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal topic breakdown: %w", err)
	}

	query := `
		INSERT INTO pyq_sessions (id, subject, mode, years, marks, questions, answers,
		                          auto_results, ai_feedback, total_score, max_score,
		                          topic_breakdown, weak_topics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.db.Exec(query, record.ID, record.Subject, string(record.Mode),
		pq.Array(record.Years), pq.Array(record.Marks), questionsJSON, answersJSON,
		autoJSON, feedbackJSON, record.TotalScore, record.MaxScore,
		breakdownJSON, pq.Array(record.WeakTopics), record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *PostgresSessionRepository) GetSession(id string) (*models.SessionRecord, error) {
	query := `
		SELECT id, subject, mode, years, marks, questions, answers, auto_results,
		       ai_feedback, total_score, max_score, topic_breakdown, weak_topics, created_at
		FROM pyq_sessions
		WHERE id = $1`

	record, err := r.scanRecord(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session with id %s not found", id)
		}
		return nil, err
	}

	return record, nil
}

func (r *PostgresSessionRepository) ListBySubject(subject string, limit int) ([]*models.SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, subject, mode, years, marks, questions, answers, auto_results,
		       ai_feedback, total_score, max_score, topic_breakdown, weak_topics, created_at
		FROM pyq_sessions
		WHERE subject = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(query, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	records := make([]*models.SessionRecord, 0)
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sessions: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresSessionRepository) scanRecord(row rowScanner) (*models.SessionRecord, error) {
	record := &models.SessionRecord{}
	var questionsJSON, answersJSON, autoJSON, feedbackJSON, breakdownJSON []byte

	err := row.Scan(&record.ID, &record.Subject, &record.Mode,
		pq.Array(&record.Years), pq.Array(&record.Marks), &questionsJSON, &answersJSON,
		&autoJSON, &feedbackJSON, &record.TotalScore, &record.MaxScore,
		&breakdownJSON, pq.Array(&record.WeakTopics), &record.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	if err := json.Unmarshal(questionsJSON, &record.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(answersJSON, &record.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(autoJSON, &record.AutoResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auto results: %w", err)
	}
	if err := json.Unmarshal(feedbackJSON, &record.AIFeedback); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AI feedback: %w", err)
	}
	if err := json.Unmarshal(breakdownJSON, &record.TopicBreakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topic breakdown: %w", err)
	}

	return record, nil
}

func (r *PostgresSessionRepository) Close() error {
	return r.db.Close()
}
