package store

import (
	"testing"

	"github.com/pavelanni/classboard/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testKPs = []model.KnowledgePoint{
	{ID: "KP1", Statement: "first", MasteryRate: 85, Difficulty: model.DifficultyMedium},
	{ID: "KP2", Statement: "second", MasteryRate: 62, Difficulty: model.DifficultyEasy},
	{ID: "KP3", Statement: "third", MasteryRate: 45, Difficulty: model.DifficultyHard},
}

func seedClass(t *testing.T, s *Store) {
	t.Helper()
	roster := []model.StudentResult{
		{StudentMastery: model.StudentMastery{ID: 0, Name: "学生 1", MasteryScore: 90, Status: model.StatusMastered}, PreClassScore: 90, KPMastery: map[string]int{"KP1": 95, "KP2": 88}},
		{StudentMastery: model.StudentMastery{ID: 1, Name: "学生 2", MasteryScore: 65, Status: model.StatusAtRisk}, PreClassScore: 65, KPMastery: map[string]int{"KP1": 60, "KP2": 70}},
	}
	seats := []model.StudentMastery{
		{ID: 0, Name: "学生 1", MasteryScore: 95, Status: model.StatusMastered},
		{ID: 1, Name: "学生 2", MasteryScore: 70, Status: model.StatusPassing},
	}
	if err := s.ReplaceClass(roster, seats); err != nil {
		t.Fatalf("ReplaceClass: %v", err)
	}
}

func TestMigrations(t *testing.T) {
	s := newTestStore(t)
	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("expected schema version 2, got %d", v)
	}
}

func TestKnowledgePoints(t *testing.T) {
	s := newTestStore(t)

	kps, err := s.ListKnowledgePoints()
	if err != nil {
		t.Fatalf("ListKnowledgePoints: %v", err)
	}
	if len(kps) != 0 {
		t.Fatalf("expected empty list, got %d", len(kps))
	}

	if err := s.ReplaceKnowledgePoints(testKPs); err != nil {
		t.Fatalf("ReplaceKnowledgePoints: %v", err)
	}
	kps, _ = s.ListKnowledgePoints()
	if len(kps) != 3 || kps[2].ID != "KP3" || kps[2].Difficulty != model.DifficultyHard {
		t.Fatalf("unexpected knowledge points: %+v", kps)
	}

	// Appending skips ids that already exist and keeps order.
	added, err := s.AppendKnowledgePoints([]model.KnowledgePoint{
		{ID: "KP2", Statement: "dup", Difficulty: model.DifficultyEasy},
		{ID: "KP4", Statement: "fourth", Difficulty: model.DifficultyHard},
	})
	if err != nil {
		t.Fatalf("AppendKnowledgePoints: %v", err)
	}
	if added != 1 {
		t.Errorf("expected 1 added, got %d", added)
	}
	kps, _ = s.ListKnowledgePoints()
	if len(kps) != 4 || kps[3].ID != "KP4" {
		t.Errorf("expected KP4 appended last, got %+v", kps)
	}
	if kps[1].Statement != "second" {
		t.Errorf("existing point was overwritten: %q", kps[1].Statement)
	}

	added, _ = s.AppendKnowledgePoints([]model.KnowledgePoint{{ID: "KP4", Statement: "again", Difficulty: model.DifficultyHard}})
	if added != 0 {
		t.Errorf("expected repeat append to add nothing, got %d", added)
	}
}

func TestClass(t *testing.T) {
	s := newTestStore(t)
	seedClass(t, s)

	count, err := s.StudentCount()
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 students, got %d", count)
	}

	students, err := s.ListStudents()
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if students[1].KPMastery["KP2"] != 70 {
		t.Errorf("expected KP2 mastery 70, got %d", students[1].KPMastery["KP2"])
	}

	st, err := s.GetStudent(0)
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if st == nil || st.Name != "学生 1" || st.KPMastery["KP1"] != 95 {
		t.Errorf("unexpected student: %+v", st)
	}

	st, err = s.GetStudent(99)
	if err != nil || st != nil {
		t.Errorf("expected nil student for unknown id, got %+v, %v", st, err)
	}

	seats, err := s.ListSeats()
	if err != nil {
		t.Fatalf("ListSeats: %v", err)
	}
	if len(seats) != 2 || seats[1].Status != model.StatusPassing {
		t.Errorf("unexpected seats: %+v", seats)
	}
	seat, _ := s.GetSeat(1)
	if seat == nil || seat.MasteryScore != 70 {
		t.Errorf("unexpected seat: %+v", seat)
	}
	seat, _ = s.GetSeat(7)
	if seat != nil {
		t.Errorf("expected nil seat, got %+v", seat)
	}

	// Replacing the class drops plans generated for the old one.
	if err := s.SaveHomework(model.StudentHomework{StudentID: 0, StudentName: "学生 1"}); err != nil {
		t.Fatalf("SaveHomework: %v", err)
	}
	seedClass(t, s)
	plans, _ := s.ListHomework()
	if len(plans) != 0 {
		t.Errorf("expected plans cleared, got %d", len(plans))
	}
}

func TestHomework(t *testing.T) {
	s := newTestStore(t)

	hw, err := s.GetHomework(3)
	if err != nil || hw != nil {
		t.Fatalf("expected no plan, got %+v, %v", hw, err)
	}

	plan := model.StudentHomework{
		StudentID:   3,
		StudentName: "学生 4",
		Questions:   []model.HomeworkQuestion{{ID: "B1", Content: "c", Difficulty: model.TierBasic, Type: "选择题"}},
		Comment:     "comment",
	}
	if err := s.SaveHomework(plan); err != nil {
		t.Fatalf("SaveHomework: %v", err)
	}

	ok, err := s.MarkHomeworkPushed(3)
	if err != nil || !ok {
		t.Fatalf("MarkHomeworkPushed: %v, %v", ok, err)
	}
	hw, _ = s.GetHomework(3)
	if hw == nil || !hw.Pushed || len(hw.Questions) != 1 || hw.Questions[0].Difficulty != model.TierBasic {
		t.Fatalf("unexpected plan: %+v", hw)
	}

	// Saving again resets the pushed flag.
	if err := s.SaveHomework(plan); err != nil {
		t.Fatalf("SaveHomework again: %v", err)
	}
	hw, _ = s.GetHomework(3)
	if hw.Pushed {
		t.Error("expected pushed to be reset")
	}

	ok, _ = s.MarkHomeworkPushed(42)
	if ok {
		t.Error("expected push of a missing plan to report false")
	}

	if err := s.ClearHomework(); err != nil {
		t.Fatalf("ClearHomework: %v", err)
	}
	plans, _ := s.ListHomework()
	if len(plans) != 0 {
		t.Errorf("expected 0 plans, got %d", len(plans))
	}
}

func TestQuizItems(t *testing.T) {
	s := newTestStore(t)
	yes := true
	items := []model.QuizItem{
		{ID: "a", Stage: model.StagePre, Type: model.ItemSingleChoice, Content: "A", Options: []string{"x", "y"}, CorrectOptions: []int{1}, Score: 5},
		{ID: "b", Stage: model.StageIn, Type: model.ItemTrueFalse, Content: "B", CorrectBoolean: &yes, Score: 3},
		{ID: "c", Stage: model.StagePre, Type: model.ItemSubjective, Content: "C", RelatedKnowledgeIDs: []string{"KP1"}, Analysis: "note"},
	}
	if err := s.AddQuizItems(items...); err != nil {
		t.Fatalf("AddQuizItems: %v", err)
	}

	pre, err := s.ListQuizItems(model.StagePre)
	if err != nil {
		t.Fatalf("ListQuizItems: %v", err)
	}
	if len(pre) != 2 || pre[0].ID != "a" || pre[1].ID != "c" {
		t.Fatalf("unexpected pre items: %+v", pre)
	}
	if pre[0].CorrectOptions[0] != 1 || pre[0].Options[1] != "y" {
		t.Errorf("options not round-tripped: %+v", pre[0])
	}
	if pre[1].RelatedKnowledgeIDs[0] != "KP1" || pre[1].CorrectBoolean != nil {
		t.Errorf("unexpected subjective item: %+v", pre[1])
	}

	in, _ := s.ListQuizItems(model.StageIn)
	if len(in) != 1 || in[0].CorrectBoolean == nil || !*in[0].CorrectBoolean {
		t.Fatalf("unexpected in items: %+v", in)
	}

	updated := pre[0]
	updated.Content = "edited"
	updated.CorrectOptions = []int{0}
	ok, err := s.UpdateQuizItem(updated)
	if err != nil || !ok {
		t.Fatalf("UpdateQuizItem: %v, %v", ok, err)
	}
	got, _ := s.GetQuizItem("a")
	if got == nil || got.Content != "edited" || got.CorrectOptions[0] != 0 {
		t.Errorf("unexpected item after update: %+v", got)
	}

	ok, _ = s.DeleteQuizItem("a")
	if !ok {
		t.Error("expected delete to report true")
	}
	got, _ = s.GetQuizItem("a")
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
	ok, _ = s.DeleteQuizItem("a")
	if ok {
		t.Error("expected second delete to report false")
	}

	// New items go after the last remaining one.
	if err := s.AddQuizItems(model.QuizItem{ID: "d", Stage: model.StagePre, Type: model.ItemSubjective, Content: "D"}); err != nil {
		t.Fatalf("AddQuizItems: %v", err)
	}
	pre, _ = s.ListQuizItems(model.StagePre)
	if len(pre) != 2 || pre[1].ID != "d" {
		t.Errorf("expected d last, got %+v", pre)
	}
}

func TestResources(t *testing.T) {
	s := newTestStore(t)
	for _, r := range []model.ResourceItem{
		{ID: "1", Name: "a.mp4", Type: model.ResourceVideo, Size: "45.2 MB", Status: "ready"},
		{ID: "2", Name: "b.pptx", Type: model.ResourceDocument, Size: "12.5 MB", Status: "ready"},
	} {
		if err := s.AddResource(r); err != nil {
			t.Fatalf("AddResource: %v", err)
		}
	}
	list, err := s.ListResources()
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(list) != 2 || list[0].Name != "a.mp4" {
		t.Fatalf("unexpected resources: %+v", list)
	}
	ok, _ := s.DeleteResource("1")
	if !ok {
		t.Error("expected delete to report true")
	}
	list, _ = s.ListResources()
	if len(list) != 1 || list[0].ID != "2" {
		t.Errorf("unexpected resources after delete: %+v", list)
	}
}

func TestDimensions(t *testing.T) {
	s := newTestStore(t)
	dims := []model.AssessmentDimension{
		{ID: "D1", Name: "one", MaxScore: 30, Weight: 0.3, Levels: []model.AssessmentLevel{{Grade: "L5", Label: "优秀", ScoreRange: [2]int{90, 100}}}},
		{ID: "D2", Name: "two", MaxScore: 70, Weight: 0.7, RelatedKnowledgeIDs: []string{"KP1"}},
	}
	if err := s.ReplaceDimensions(ScopeClass, dims); err != nil {
		t.Fatalf("ReplaceDimensions: %v", err)
	}
	got, err := s.ListDimensions(ScopeClass)
	if err != nil {
		t.Fatalf("ListDimensions: %v", err)
	}
	if len(got) != 2 || got[0].Levels[0].ScoreRange != [2]int{90, 100} || got[1].Weight != 0.7 {
		t.Fatalf("unexpected dimensions: %+v", got)
	}
	student, _ := s.ListDimensions(ScopeStudent)
	if len(student) != 0 {
		t.Errorf("scopes leaked: %+v", student)
	}

	if err := s.ReplaceDimensions(ScopeClass, dims[:1]); err != nil {
		t.Fatalf("ReplaceDimensions: %v", err)
	}
	got, _ = s.ListDimensions(ScopeClass)
	if len(got) != 1 {
		t.Errorf("expected 1 dimension after replace, got %d", len(got))
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetMetadata("missing")
	if err != nil || v != "" {
		t.Fatalf("expected empty value, got %q, %v", v, err)
	}

	info := model.LessonInfo{Title: "沉淀溶解平衡", Class: "高二(3)班", Teacher: "李老师", Date: "2023-10-27"}
	if err := s.SetLessonInfo(info); err != nil {
		t.Fatalf("SetLessonInfo: %v", err)
	}
	got, err := s.GetLessonInfo()
	if err != nil {
		t.Fatalf("GetLessonInfo: %v", err)
	}
	if got != info {
		t.Errorf("expected %+v, got %+v", info, got)
	}

	list, _ := s.GetList(KeyTags)
	if list != nil {
		t.Errorf("expected nil list, got %v", list)
	}
	if err := s.SetList(KeyTags, []string{"a", "b"}); err != nil {
		t.Fatalf("SetList: %v", err)
	}
	list, _ = s.GetList(KeyTags)
	if len(list) != 2 || list[1] != "b" {
		t.Errorf("unexpected list: %v", list)
	}
	if err := s.SetList(KeyTags, nil); err != nil {
		t.Fatalf("SetList nil: %v", err)
	}
	list, _ = s.GetList(KeyTags)
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %v", list)
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	// Missing file returns empty string.
	hash, err := s.GetImportedFileHash("/some/lesson.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/lesson.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/lesson.json")
	if hash != "abc123" {
		t.Errorf("expected 'abc123', got %q", hash)
	}

	// Update existing.
	if err := s.SetImportedFileHash("/some/lesson.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/lesson.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}

func TestUploads(t *testing.T) {
	s := newTestStore(t)

	status, name, err := s.GetUpload("c1", "post")
	if err != nil || status != model.UploadPending || name != "" {
		t.Fatalf("expected pending default, got %q %q %v", status, name, err)
	}
	if err := s.SetUpload("c1", "post", model.UploadSubmitted, "photo.jpg"); err != nil {
		t.Fatalf("SetUpload: %v", err)
	}
	status, name, _ = s.GetUpload("c1", "post")
	if status != model.UploadSubmitted || name != "photo.jpg" {
		t.Errorf("unexpected upload: %q %q", status, name)
	}
	status, _, _ = s.GetUpload("c1", "preview")
	if status != model.UploadPending {
		t.Errorf("kinds leaked: %q", status)
	}
}

func TestExportLessonReport(t *testing.T) {
	s := newTestStore(t)
	if err := s.ReplaceKnowledgePoints(testKPs); err != nil {
		t.Fatalf("ReplaceKnowledgePoints: %v", err)
	}
	seedClass(t, s)

	b := &model.Bundle{
		Lesson:    model.LessonInfo{Title: "fallback"},
		Classroom: model.ClassroomSummary{Score: 92},
	}
	rep, err := s.ExportLessonReport(b)
	if err != nil {
		t.Fatalf("ExportLessonReport: %v", err)
	}
	if rep.Lesson.Title != "fallback" {
		t.Errorf("expected bundle lesson when metadata is empty, got %q", rep.Lesson.Title)
	}
	if rep.ClassroomScore != 92 {
		t.Errorf("expected classroom score 92, got %d", rep.ClassroomScore)
	}
	if len(rep.Students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(rep.Students))
	}
	if rep.Students[1].InClassScore != 70 || rep.Students[1].Status != model.StatusPassing {
		t.Errorf("expected in-class seat data, got %+v", rep.Students[1])
	}
	if rep.ClassAverages["KP1"] != 78 {
		t.Errorf("expected KP1 average 78, got %d", rep.ClassAverages["KP1"])
	}
	if rep.StatusCounts["passing"] != 1 || rep.StatusCounts["mastered"] != 1 {
		t.Errorf("unexpected status counts: %v", rep.StatusCounts)
	}
}
