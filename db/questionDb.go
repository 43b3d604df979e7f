package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"examprep/models"

	"github.com/lib/pq"
)

// fetchPageSize keeps single SELECTs well under the store's row cap; the
// bank holds more questions per subject than one page can carry, so reads
// loop until a short page signals end-of-data.
const fetchPageSize = 1000

type QuestionRepository interface {
	FetchQuestions(subject string, filters models.QuestionFilters) ([]models.Question, error)
	FetchPapers(subject string) ([]models.Paper, error)
	SavePaper(paper *models.Paper) error
	SubjectIndex() ([]models.SubjectSummary, error)
}

type PostgresQuestionRepository struct {
	db *sql.DB
}

func NewPostgresQuestionRepository(databaseURL string) (*PostgresQuestionRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresQuestionRepository{db: db}, nil
}

func (r *PostgresQuestionRepository) FetchQuestions(subject string, filters models.QuestionFilters) ([]models.Question, error) {
	query := `
		SELECT id, question_number, section, type, question, options,
		       correct_answer, solution, marks, topic, has_alternative,
		       alternative_question, year, paper_id
		FROM pyq_questions
		WHERE subject = $1`

	args := []any{subject}

	if len(filters.Marks) > 0 {
		args = append(args, pq.Array(filters.Marks))
		query += fmt.Sprintf(" AND marks = ANY($%d)", len(args))
	}
	if len(filters.Years) > 0 {
		args = append(args, pq.Array(filters.Years))
		query += fmt.Sprintf(" AND year = ANY($%d)", len(args))
	}
	if filters.Topic != "" {
		args = append(args, "%"+filters.Topic+"%")
		query += fmt.Sprintf(" AND topic ILIKE $%d", len(args))
	}
	if filters.Section != "" {
		args = append(args, filters.Section)
		query += fmt.Sprintf(" AND UPPER(section) = UPPER($%d)", len(args))
	}

	query += " ORDER BY year DESC, question_number ASC"

	var questions []models.Question
	offset := 0
	for {
		pageQuery := fmt.Sprintf("%s LIMIT %d OFFSET %d", query, fetchPageSize, offset)

		page, err := r.queryQuestions(pageQuery, args...)
		if err != nil {
			return nil, err
		}

		questions = append(questions, page...)
		if len(page) < fetchPageSize {
			break
		}
		offset += fetchPageSize
	}

	return questions, nil
}

func (r *PostgresQuestionRepository) queryQuestions(query string, args ...any) ([]models.Question, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := make([]models.Question, 0)
	for rows.Next() {
		var q models.Question
		var optionsJSON, alternativeJSON []byte
		var topic, paperID sql.NullString

		err := rows.Scan(&q.ID, &q.QuestionNumber, &q.Section, &q.Type, &q.Text,
			&optionsJSON, &q.CorrectAnswer, &q.Solution, &q.Marks, &topic,
			&q.HasAlternative, &alternativeJSON, &q.Year, &paperID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}

		q.Topic = topic.String
		q.PaperID = paperID.String

		if len(optionsJSON) > 0 {
			if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
				return nil, fmt.Errorf("failed to unmarshal options for question %s: %w", q.ID, err)
			}
		}
		if len(alternativeJSON) > 0 {
			if err := json.Unmarshal(alternativeJSON, &q.AlternativeQuestion); err != nil {
				return nil, fmt.Errorf("failed to unmarshal alternative question for %s: %w", q.ID, err)
			}
		}

		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over questions: %w", err)
	}

	return questions, nil
}

func (r *PostgresQuestionRepository) FetchPapers(subject string) ([]models.Paper, error) {
	query := `
		SELECT id, subject, year, set_code, total_marks, duration_minutes, question_count
		FROM pyq_papers
		WHERE subject = $1
		ORDER BY year DESC`

	rows, err := r.db.Query(query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	papers := make([]models.Paper, 0)
	for rows.Next() {
		var p models.Paper
		err := rows.Scan(&p.ID, &p.Subject, &p.Year, &p.SetCode, &p.TotalMarks, &p.DurationMinutes, &p.QuestionCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over papers: %w", err)
	}

	return papers, nil
}

// SavePaper inserts a paper, enforcing the one-paper-per-(subject, year)
// invariant at write time. Re-saving the same paper id updates it in
// place; a different paper for an occupied (subject, year) slot is
// rejected.
func (r *PostgresQuestionRepository) SavePaper(paper *models.Paper) error {
	var existingID string
	err := r.db.QueryRow(
		"SELECT id FROM pyq_papers WHERE subject = $1 AND year = $2",
		paper.Subject, paper.Year,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for existing paper: %w", err)
	}
	if err == nil && existingID != paper.ID {
		return fmt.Errorf("%w: %s %d is taken by paper %s", models.ErrPaperYearConflict, paper.Subject, paper.Year, existingID)
	}

	query := `
		INSERT INTO pyq_papers (id, subject, year, set_code, total_marks, duration_minutes, question_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			set_code = EXCLUDED.set_code,
			total_marks = EXCLUDED.total_marks,
			duration_minutes = EXCLUDED.duration_minutes,
			question_count = EXCLUDED.question_count`

	if _, err := r.db.Exec(query, paper.ID, paper.Subject, paper.Year, paper.SetCode,
		paper.TotalMarks, paper.DurationMinutes, paper.QuestionCount); err != nil {
		return fmt.Errorf("failed to save paper: %w", err)
	}

	return nil
}

// SubjectIndex aggregates the bank into per-subject summaries: available
// years and question counts per marks value.
func (r *PostgresQuestionRepository) SubjectIndex() ([]models.SubjectSummary, error) {
	query := `
		SELECT subject, marks, year, COUNT(*)
		FROM pyq_questions
		GROUP BY subject, marks, year`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subject index: %w", err)
	}
	defer rows.Close()

	bySubject := make(map[string]*models.SubjectSummary)
	yearSets := make(map[string]map[int]bool)

	for rows.Next() {
		var subject string
		var marks, year, count int
		if err := rows.Scan(&subject, &marks, &year, &count); err != nil {
			return nil, fmt.Errorf("failed to scan index row: %w", err)
		}

		summary, ok := bySubject[subject]
		if !ok {
			summary = &models.SubjectSummary{Name: subject, MarkCounts: make(map[int]int)}
			bySubject[subject] = summary
			yearSets[subject] = make(map[int]bool)
		}

		summary.MarkCounts[marks] += count
		summary.TotalQuestions += count
		yearSets[subject][year] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over index rows: %w", err)
	}

	summaries := make([]models.SubjectSummary, 0, len(bySubject))
	for subject, summary := range bySubject {
		for year := range yearSets[subject] {
			summary.Years = append(summary.Years, year)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(summary.Years)))
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	return summaries, nil
}

func (r *PostgresQuestionRepository) Close() error {
	return r.db.Close()
}
