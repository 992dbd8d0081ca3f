package store

import (
	"database/sql"
	"time"

	"github.com/pavelanni/classboard/internal/model"
)

// Metadata keys.
const (
	KeyTitle         = "lesson_title"
	KeyClass         = "lesson_class"
	KeyTeacher       = "lesson_teacher"
	KeyDate          = "lesson_date"
	KeyTopic         = "lesson_topic"
	KeySeed          = "roster_seed"
	KeyTheme         = "studio_theme"
	KeyGrade         = "studio_grade"
	KeySubject       = "studio_subject"
	KeyTags          = "studio_tags"
	KeyAgents        = "studio_agents"
	KeyKnowledgeView = "studio_knowledge_view"
	KeySelectedPre   = "studio_selected_pre"
	KeySelectedIn    = "studio_selected_in"
	KeySelectedDim   = "studio_selected_dimension"
)

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetList stores a string list under key as JSON.
func (s *Store) SetList(key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	data, err := toJSON(values)
	if err != nil {
		return err
	}
	return s.SetMetadata(key, data)
}

// GetList returns the string list stored under key, or nil if missing.
func (s *Store) GetList(key string) ([]string, error) {
	data, err := s.GetMetadata(key)
	if err != nil {
		return nil, err
	}
	var values []string
	if err := fromJSON(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// SetLessonInfo stores all LessonInfo fields as metadata rows.
func (s *Store) SetLessonInfo(info model.LessonInfo) error {
	pairs := []struct{ k, v string }{
		{KeyTitle, info.Title},
		{KeyClass, info.Class},
		{KeyTeacher, info.Teacher},
		{KeyDate, info.Date},
		{KeyTopic, info.Topic},
	}
	for _, p := range pairs {
		if err := s.SetMetadata(p.k, p.v); err != nil {
			return err
		}
	}
	return nil
}

// GetLessonInfo reads all LessonInfo fields from metadata.
func (s *Store) GetLessonInfo() (model.LessonInfo, error) {
	var info model.LessonInfo
	var err error

	if info.Title, err = s.GetMetadata(KeyTitle); err != nil {
		return info, err
	}
	if info.Class, err = s.GetMetadata(KeyClass); err != nil {
		return info, err
	}
	if info.Teacher, err = s.GetMetadata(KeyTeacher); err != nil {
		return info, err
	}
	if info.Date, err = s.GetMetadata(KeyDate); err != nil {
		return info, err
	}
	if info.Topic, err = s.GetMetadata(KeyTopic); err != nil {
		return info, err
	}
	return info, nil
}

// GetImportedFileHash returns the hash recorded for path, or "" if the file
// was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records that path was imported with the given hash.
func (s *Store) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash, imported_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = ?, imported_at = ?`,
		path, hash, time.Now(), hash, time.Now(),
	)
	return err
}
