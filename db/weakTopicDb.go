package db

import (
	"database/sql"
	"fmt"

	"examprep/models"
)

type WeakTopicRepository interface {
	// GetBySubject returns the subject's records sorted ascending by
	// accuracy, weakest first.
	GetBySubject(subject string) ([]models.WeakTopicRecord, error)
	Upsert(record *models.WeakTopicRecord) error

	// HasRecordedSession / MarkSessionRecorded back the tracker's
	// once-per-session guard.
	HasRecordedSession(sessionID string) (bool, error)
	MarkSessionRecorded(sessionID string) error
}

type PostgresWeakTopicRepository struct {
	db *sql.DB
}

func NewPostgresWeakTopicRepository(databaseURL string) (*PostgresWeakTopicRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresWeakTopicRepository{db: db}, nil
}

func (r *PostgresWeakTopicRepository) GetBySubject(subject string) ([]models.WeakTopicRecord, error) {
	query := `
		SELECT subject, topic, accuracy, total_attempted, last_attempted_at
		FROM weak_topics
		WHERE subject = $1
		ORDER BY accuracy ASC`

	rows, err := r.db.Query(query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query weak topics: %w", err)
	}
	defer rows.Close()

	records := make([]models.WeakTopicRecord, 0)
	for rows.Next() {
		var rec models.WeakTopicRecord
		err := rows.Scan(&rec.Subject, &rec.Topic, &rec.Accuracy, &rec.TotalAttempted, &rec.LastAttemptedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weak topic: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over weak topics: %w", err)
	}

	return records, nil
}

func (r *PostgresWeakTopicRepository) Upsert(record *models.WeakTopicRecord) error {
	query := `
		INSERT INTO weak_topics (subject, topic, accuracy, total_attempted, last_attempted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subject, topic) DO UPDATE SET
			accuracy = EXCLUDED.accuracy,
			total_attempted = EXCLUDED.total_attempted,
			last_attempted_at = EXCLUDED.last_attempted_at`

	_, err := r.db.Exec(query, record.Subject, record.Topic, record.Accuracy,
		record.TotalAttempted, record.LastAttemptedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert weak topic: %w", err)
	}

	return nil
}

func (r *PostgresWeakTopicRepository) HasRecordedSession(sessionID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM weak_topic_sessions WHERE session_id = $1)",
		sessionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recorded session: %w", err)
	}

	return exists, nil
}

func (r *PostgresWeakTopicRepository) MarkSessionRecorded(sessionID string) error {
	_, err := r.db.Exec(
		"INSERT INTO weak_topic_sessions (session_id) VALUES ($1) ON CONFLICT (session_id) DO NOTHING",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session recorded: %w", err)
	}

	return nil
}

func (r *PostgresWeakTopicRepository) Close() error {
	return r.db.Close()
}
