package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pavelanni/classboard/internal/model"
)

const quizItemColumns = `id, stage, position, type, content, options, correct_options,
	correct_boolean, score, related_knowledge_ids, analysis`

func scanQuizItem(sc interface{ Scan(...any) error }) (model.QuizItem, error) {
	var q model.QuizItem
	var opts, correct, related string
	var boolean sql.NullBool
	if err := sc.Scan(&q.ID, &q.Stage, &q.Position, &q.Type, &q.Content, &opts, &correct,
		&boolean, &q.Score, &related, &q.Analysis); err != nil {
		return q, err
	}
	if err := fromJSON(opts, &q.Options); err != nil {
		return q, fmt.Errorf("decode options of %s: %w", q.ID, err)
	}
	if err := fromJSON(correct, &q.CorrectOptions); err != nil {
		return q, fmt.Errorf("decode answers of %s: %w", q.ID, err)
	}
	if err := fromJSON(related, &q.RelatedKnowledgeIDs); err != nil {
		return q, fmt.Errorf("decode knowledge links of %s: %w", q.ID, err)
	}
	if boolean.Valid {
		b := boolean.Bool
		q.CorrectBoolean = &b
	}
	return q, nil
}

func quizItemArgs(q model.QuizItem) ([]any, error) {
	opts, err := toJSON(nonNil(q.Options))
	if err != nil {
		return nil, err
	}
	correct, err := toJSON(nonNilInts(q.CorrectOptions))
	if err != nil {
		return nil, err
	}
	related, err := toJSON(nonNil(q.RelatedKnowledgeIDs))
	if err != nil {
		return nil, err
	}
	var boolean sql.NullBool
	if q.CorrectBoolean != nil {
		boolean = sql.NullBool{Bool: *q.CorrectBoolean, Valid: true}
	}
	return []any{q.Type, q.Content, opts, correct, boolean, q.Score, related, q.Analysis}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

// AddQuizItems appends items to the end of their stage's list.
func (s *Store) AddQuizItems(items ...model.QuizItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, q := range items {
		var next int
		if err := tx.QueryRow(
			`SELECT COALESCE(MAX(position), -1) + 1 FROM quiz_items WHERE stage = ?`, q.Stage,
		).Scan(&next); err != nil {
			return err
		}
		args, err := quizItemArgs(q)
		if err != nil {
			return err
		}
		args = append([]any{q.ID, q.Stage, next}, args...)
		if _, err := tx.Exec(
			`INSERT INTO quiz_items (`+quizItemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			args...,
		); err != nil {
			return fmt.Errorf("insert quiz item %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}

// UpdateQuizItem overwrites an item's editable fields. It returns false if
// the item does not exist.
func (s *Store) UpdateQuizItem(q model.QuizItem) (bool, error) {
	args, err := quizItemArgs(q)
	if err != nil {
		return false, err
	}
	res, err := s.db.Exec(
		`UPDATE quiz_items SET type = ?, content = ?, options = ?, correct_options = ?,
		 correct_boolean = ?, score = ?, related_knowledge_ids = ?, analysis = ? WHERE id = ?`,
		append(args, q.ID)...,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteQuizItem removes an item. It returns false if the item does not exist.
func (s *Store) DeleteQuizItem(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM quiz_items WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetQuizItem returns an item, or nil if it does not exist.
func (s *Store) GetQuizItem(id string) (*model.QuizItem, error) {
	q, err := scanQuizItem(s.db.QueryRow(`SELECT `+quizItemColumns+` FROM quiz_items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuizItems returns a stage's items in list order.
func (s *Store) ListQuizItems(stage model.QuizStage) ([]model.QuizItem, error) {
	rows, err := s.db.Query(`SELECT `+quizItemColumns+` FROM quiz_items WHERE stage = ? ORDER BY position`, stage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.QuizItem
	for rows.Next() {
		q, err := scanQuizItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

// AddResource appends a resource to the list.
func (s *Store) AddResource(r model.ResourceItem) error {
	_, err := s.db.Exec(
		`INSERT INTO resources (id, position, name, type, size, status)
		 VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM resources), ?, ?, ?, ?)`,
		r.ID, r.Name, r.Type, r.Size, r.Status,
	)
	return err
}

// DeleteResource removes a resource. It returns false if it does not exist.
func (s *Store) DeleteResource(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListResources returns resources in upload order.
func (s *Store) ListResources() ([]model.ResourceItem, error) {
	rows, err := s.db.Query(`SELECT id, name, type, size, status FROM resources ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ResourceItem
	for rows.Next() {
		var r model.ResourceItem
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.Size, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Dimension scopes.
const (
	ScopeStudent = "student"
	ScopeClass   = "class"
)

// ReplaceDimensions swaps all dimensions of a scope for dims, in order.
func (s *Store) ReplaceDimensions(scope string, dims []model.AssessmentDimension) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM dimensions WHERE scope = ?`, scope); err != nil {
		return err
	}
	for i, d := range dims {
		related, err := toJSON(nonNil(d.RelatedKnowledgeIDs))
		if err != nil {
			return err
		}
		levels, err := toJSON(d.Levels)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO dimensions (scope, id, position, name, max_score, weight, description, related_knowledge_ids, levels)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			scope, d.ID, i, d.Name, d.MaxScore, d.Weight, d.Description, related, levels,
		); err != nil {
			return fmt.Errorf("insert dimension %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// ListDimensions returns a scope's dimensions in order.
func (s *Store) ListDimensions(scope string) ([]model.AssessmentDimension, error) {
	rows, err := s.db.Query(
		`SELECT id, name, max_score, weight, description, related_knowledge_ids, levels
		 FROM dimensions WHERE scope = ? ORDER BY position`, scope,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dims []model.AssessmentDimension
	for rows.Next() {
		var d model.AssessmentDimension
		var related, levels string
		if err := rows.Scan(&d.ID, &d.Name, &d.MaxScore, &d.Weight, &d.Description, &related, &levels); err != nil {
			return nil, err
		}
		if err := fromJSON(related, &d.RelatedKnowledgeIDs); err != nil {
			return nil, fmt.Errorf("decode dimension %s: %w", d.ID, err)
		}
		if err := fromJSON(levels, &d.Levels); err != nil {
			return nil, fmt.Errorf("decode dimension %s: %w", d.ID, err)
		}
		dims = append(dims, d)
	}
	return dims, rows.Err()
}

// SetUpload records the status of a student's upload for a course.
func (s *Store) SetUpload(courseID, kind string, status model.UploadStatus, fileName string) error {
	_, err := s.db.Exec(
		`INSERT INTO uploads (course_id, kind, status, file_name, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(course_id, kind) DO UPDATE SET status = ?, file_name = ?, updated_at = ?`,
		courseID, kind, status, fileName, time.Now(),
		status, fileName, time.Now(),
	)
	return err
}

// GetUpload returns the status and file name of an upload; a missing row is
// pending.
func (s *Store) GetUpload(courseID, kind string) (model.UploadStatus, string, error) {
	var status model.UploadStatus
	var name string
	err := s.db.QueryRow(
		`SELECT status, file_name FROM uploads WHERE course_id = ? AND kind = ?`, courseID, kind,
	).Scan(&status, &name)
	if err == sql.ErrNoRows {
		return model.UploadPending, "", nil
	}
	return status, name, err
}
