package views

import (
	"fmt"
	"net/url"

	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/model"
)

// DashboardData is what the teacher dashboard renders.
type DashboardData struct {
	Lesson          model.LessonInfo
	Bundle          *model.Bundle
	KnowledgePoints []model.KnowledgePoint
	Roster          []model.StudentResult
	Averages        map[string]int
	Seats           []model.StudentMastery
	Student         *StudentDetail
}

// StudentDetail is the data of the student detail panel.
type StudentDetail struct {
	Student         model.StudentResult
	Seat            *model.StudentMastery
	Percentile      int
	Compare         []model.RadarAxis
	KnowledgePoints []model.KnowledgePoint
	Homework        *model.StudentHomework
}

func studentPath(id int) string {
	return fmt.Sprintf("/?student=%d", id)
}

// HomeworkData is the state of the homework generator.
type HomeworkData struct {
	Status jobs.Status
	Plans  []model.StudentHomework
	Total  int
}

func homeworkPath(studentID int, parts ...string) string {
	p := fmt.Sprintf("/homework/%d", studentID)
	for _, s := range parts {
		p += "/" + s
	}
	return p
}

// Upload kinds in the student center.
const (
	UploadPreview = "preview"
	UploadPost    = "post"
)

// Compare tabs of the preview upload.
const (
	TabStudent = "student"
	TabAI      = "ai"
)

var compareTabs = []struct{ key, label string }{
	{TabStudent, "TabStudent"},
	{TabAI, "TabAI"},
}

// StudentHomeData is the student center landing page.
type StudentHomeData struct {
	Name    string
	Courses []model.StudentCourse
}

// stats counts ongoing and completed courses and averages their progress.
func (d StudentHomeData) stats() (ongoing, completed, progress int) {
	for _, c := range d.Courses {
		switch c.Status {
		case model.CourseOngoing:
			ongoing++
		case model.CourseCompleted:
			completed++
		}
		progress += c.Progress
	}
	if len(d.Courses) > 0 {
		progress /= len(d.Courses)
	}
	return ongoing, completed, progress
}

// Upload is the state of one photo upload.
type Upload struct {
	CourseID string
	Kind     string
	Status   model.UploadStatus
	FileName string
	Tab      string
}

// CourseData is a course detail page in the student center.
type CourseData struct {
	Course    model.StudentCourse
	Student   string
	Preview   Upload
	Post      Upload
	Questions []model.PostClassQuestion
	Radar     []model.RadarAxis
}

func coursePath(id string, parts ...string) string {
	p := "/student/courses/" + url.PathEscape(id)
	for _, s := range parts {
		p += "/" + s
	}
	return p
}

func tabPath(courseID, tab string) string {
	return coursePath(courseID) + "?tab=" + url.QueryEscape(tab)
}

func jobClass(st jobs.Status) string {
	switch st.State {
	case jobs.StateRunning:
		return "chip"
	case jobs.StateFailed:
		return "chip at-risk"
	}
	return ""
}
