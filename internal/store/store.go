package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/pavelanni/classboard/internal/model"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database exists only on its own connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func dsn(path string) string {
	q := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path != MemoryPath {
		q += "&_pragma=journal_mode(WAL)"
	}
	return path + "?" + q
}

func (s *Store) Close() error {
	return s.db.Close()
}

// slogGooseLogger routes goose output to slog.
type slogGooseLogger struct{}

func (slogGooseLogger) Printf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

func (slogGooseLogger) Fatalf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(slogGooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(s.db, "migrations")
}

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion() (int64, error) {
	return goose.GetDBVersion(s.db)
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fromJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

// ReplaceKnowledgePoints swaps the lesson's knowledge points for kps, in order.
func (s *Store) ReplaceKnowledgePoints(kps []model.KnowledgePoint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM knowledge_points`); err != nil {
		return err
	}
	for i, kp := range kps {
		_, err := tx.Exec(
			`INSERT INTO knowledge_points (id, position, statement, mastery_rate, difficulty) VALUES (?, ?, ?, ?, ?)`,
			kp.ID, i, kp.Statement, kp.MasteryRate, kp.Difficulty,
		)
		if err != nil {
			return fmt.Errorf("insert knowledge point %s: %w", kp.ID, err)
		}
	}
	return tx.Commit()
}

// AppendKnowledgePoints adds the points whose id is not present yet and
// returns how many were added.
func (s *Store) AppendKnowledgePoints(kps []model.KnowledgePoint) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	var next int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position), -1) + 1 FROM knowledge_points`).Scan(&next); err != nil {
		return 0, err
	}
	added := 0
	for _, kp := range kps {
		res, err := tx.Exec(
			`INSERT INTO knowledge_points (id, position, statement, mastery_rate, difficulty)
			 VALUES (?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			kp.ID, next, kp.Statement, kp.MasteryRate, kp.Difficulty,
		)
		if err != nil {
			return 0, fmt.Errorf("insert knowledge point %s: %w", kp.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
			next++
		}
	}
	return added, tx.Commit()
}

// ListKnowledgePoints returns the knowledge points in lesson order.
func (s *Store) ListKnowledgePoints() ([]model.KnowledgePoint, error) {
	rows, err := s.db.Query(`SELECT id, statement, mastery_rate, difficulty FROM knowledge_points ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var kps []model.KnowledgePoint
	for rows.Next() {
		var kp model.KnowledgePoint
		if err := rows.Scan(&kp.ID, &kp.Statement, &kp.MasteryRate, &kp.Difficulty); err != nil {
			return nil, err
		}
		kps = append(kps, kp)
	}
	return kps, rows.Err()
}

// ReplaceClass stores the pre-class roster and the in-class seats.
func (s *Store) ReplaceClass(roster []model.StudentResult, seats []model.StudentMastery) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, q := range []string{`DELETE FROM seats`, `DELETE FROM student_kp_mastery`, `DELETE FROM students`, `DELETE FROM homework_plans`} {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}
	for _, st := range roster {
		_, err := tx.Exec(
			`INSERT INTO students (id, name, mastery_score, status, pre_class_score) VALUES (?, ?, ?, ?, ?)`,
			st.ID, st.Name, st.MasteryScore, st.Status, st.PreClassScore,
		)
		if err != nil {
			return fmt.Errorf("insert student %d: %w", st.ID, err)
		}
		for kp, v := range st.KPMastery {
			if _, err := tx.Exec(
				`INSERT INTO student_kp_mastery (student_id, kp_id, mastery) VALUES (?, ?, ?)`,
				st.ID, kp, v,
			); err != nil {
				return fmt.Errorf("insert mastery %d/%s: %w", st.ID, kp, err)
			}
		}
	}
	for _, seat := range seats {
		if _, err := tx.Exec(
			`INSERT INTO seats (student_id, mastery_score, status) VALUES (?, ?, ?)`,
			seat.ID, seat.MasteryScore, seat.Status,
		); err != nil {
			return fmt.Errorf("insert seat %d: %w", seat.ID, err)
		}
	}
	return tx.Commit()
}

// ListStudents returns the pre-class roster with per knowledge point mastery.
func (s *Store) ListStudents() ([]model.StudentResult, error) {
	rows, err := s.db.Query(`SELECT id, name, mastery_score, status, pre_class_score FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	var students []model.StudentResult
	index := make(map[int]int)
	for rows.Next() {
		var st model.StudentResult
		if err := rows.Scan(&st.ID, &st.Name, &st.MasteryScore, &st.Status, &st.PreClassScore); err != nil {
			rows.Close()
			return nil, err
		}
		st.KPMastery = make(map[string]int)
		index[st.ID] = len(students)
		students = append(students, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := s.db.Query(`SELECT student_id, kp_id, mastery FROM student_kp_mastery`)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var id, v int
		var kp string
		if err := mrows.Scan(&id, &kp, &v); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			students[i].KPMastery[kp] = v
		}
	}
	return students, mrows.Err()
}

// GetStudent returns one student, or nil if the id is unknown.
func (s *Store) GetStudent(id int) (*model.StudentResult, error) {
	var st model.StudentResult
	err := s.db.QueryRow(
		`SELECT id, name, mastery_score, status, pre_class_score FROM students WHERE id = ?`, id,
	).Scan(&st.ID, &st.Name, &st.MasteryScore, &st.Status, &st.PreClassScore)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT kp_id, mastery FROM student_kp_mastery WHERE student_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	st.KPMastery = make(map[string]int)
	for rows.Next() {
		var kp string
		var v int
		if err := rows.Scan(&kp, &v); err != nil {
			return nil, err
		}
		st.KPMastery[kp] = v
	}
	return &st, rows.Err()
}

// ListSeats returns the in-class seating map in seat order.
func (s *Store) ListSeats() ([]model.StudentMastery, error) {
	rows, err := s.db.Query(
		`SELECT st.id, st.name, se.mastery_score, se.status
		 FROM seats se JOIN students st ON st.id = se.student_id ORDER BY st.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.StudentMastery
	for rows.Next() {
		var m model.StudentMastery
		if err := rows.Scan(&m.ID, &m.Name, &m.MasteryScore, &m.Status); err != nil {
			return nil, err
		}
		seats = append(seats, m)
	}
	return seats, rows.Err()
}

// GetSeat returns one seat, or nil if the id is unknown.
func (s *Store) GetSeat(id int) (*model.StudentMastery, error) {
	var m model.StudentMastery
	err := s.db.QueryRow(
		`SELECT st.id, st.name, se.mastery_score, se.status
		 FROM seats se JOIN students st ON st.id = se.student_id WHERE st.id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.MasteryScore, &m.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// StudentCount returns the class size.
func (s *Store) StudentCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}

// ClearHomework removes every generated plan.
func (s *Store) ClearHomework() error {
	_, err := s.db.Exec(`DELETE FROM homework_plans`)
	return err
}

// SaveHomework inserts or replaces a student's plan. The pushed flag is reset.
func (s *Store) SaveHomework(hw model.StudentHomework) error {
	qs, err := toJSON(hw.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO homework_plans (student_id, student_name, questions, comment, pushed, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)
		 ON CONFLICT(student_id) DO UPDATE SET student_name = ?, questions = ?, comment = ?, pushed = 0, created_at = ?`,
		hw.StudentID, hw.StudentName, qs, hw.Comment, time.Now(),
		hw.StudentName, qs, hw.Comment, time.Now(),
	)
	return err
}

// MarkHomeworkPushed confirms a plan. It returns false if there is no plan
// for the student.
func (s *Store) MarkHomeworkPushed(studentID int) (bool, error) {
	res, err := s.db.Exec(`UPDATE homework_plans SET pushed = 1 WHERE student_id = ?`, studentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanHomework(sc interface{ Scan(...any) error }) (model.StudentHomework, error) {
	var hw model.StudentHomework
	var qs string
	if err := sc.Scan(&hw.StudentID, &hw.StudentName, &qs, &hw.Comment, &hw.Pushed); err != nil {
		return hw, err
	}
	if err := fromJSON(qs, &hw.Questions); err != nil {
		return hw, fmt.Errorf("decode homework for student %d: %w", hw.StudentID, err)
	}
	return hw, nil
}

// GetHomework returns a student's plan, or nil if none was generated.
func (s *Store) GetHomework(studentID int) (*model.StudentHomework, error) {
	hw, err := scanHomework(s.db.QueryRow(
		`SELECT student_id, student_name, questions, comment, pushed FROM homework_plans WHERE student_id = ?`, studentID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hw, nil
}

// ListHomework returns all generated plans by student id.
func (s *Store) ListHomework() ([]model.StudentHomework, error) {
	rows, err := s.db.Query(`SELECT student_id, student_name, questions, comment, pushed FROM homework_plans ORDER BY student_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var plans []model.StudentHomework
	for rows.Next() {
		hw, err := scanHomework(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, hw)
	}
	return plans, rows.Err()
}
