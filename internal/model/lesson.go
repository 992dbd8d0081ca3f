package model

// LessonInfo is the header of a lesson.
type LessonInfo struct {
	Title   string `json:"title" validate:"required"`
	Class   string `json:"class"`
	Teacher string `json:"teacher"`
	Date    string `json:"date"`
	Topic   string `json:"topic"`
}

// Report holds the comprehensive diagnosis shown at the end of the dashboard.
type Report struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Strategies []string `json:"strategies"`
}

// ClassroomSummary is the classroom-quality score with its three-series radar
// (A this lesson, B this course, C whole school).
type ClassroomSummary struct {
	Score int         `json:"score" validate:"gte=0,lte=100"`
	Text  string      `json:"text"`
	Radar []RadarAxis `json:"radar"`
}

// StudioDefaults seeds the preparation studio.
type StudioDefaults struct {
	Theme     string         `json:"theme"`
	Grade     string         `json:"grade"`
	Subject   string         `json:"subject"`
	Tags      []string       `json:"tags"`
	Agents    []Agent        `json:"agents"`
	Selected  []string       `json:"selected_agents"`
	Resources []ResourceItem `json:"resources"`
}

// CannedAI holds the records that the placeholder "AI" actions reveal.
type CannedAI struct {
	KnowledgePoints []KnowledgePoint `json:"knowledge_points" validate:"dive"`
	Questions       []QuizItem       `json:"questions" validate:"dive"`
}

// PostClassQuestion is a homework question listed in the student view.
type PostClassQuestion struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Content    string `json:"content"`
	Difficulty string `json:"difficulty"`
}

// Bundle is everything one lesson needs, as loaded from a lesson file.
type Bundle struct {
	Lesson             LessonInfo            `json:"lesson"`
	KnowledgePoints    []KnowledgePoint      `json:"knowledge_points" validate:"required,min=1,dive"`
	PreClassMetrics    []PreClassMetric      `json:"pre_class_metrics"`
	PreClassAnalysis   string                `json:"pre_class_analysis"`
	InClassQuestions   []QuizQuestion        `json:"in_class_questions" validate:"dive"`
	InClassAnalysis    string                `json:"in_class_analysis"`
	KnowledgeNote      string                `json:"knowledge_note"`
	Trend              []TrendPoint          `json:"trend"`
	Report             Report                `json:"report"`
	Classroom          ClassroomSummary      `json:"classroom"`
	HomeworkPool       []HomeworkQuestion    `json:"homework_pool" validate:"dive"`
	ClassDimensions    []AssessmentDimension `json:"class_dimensions" validate:"dive"`
	PreClassQuiz       []QuizItem            `json:"pre_class_quiz" validate:"dive"`
	ImprovedStudents   []ImprovedStudent     `json:"improved_students"`
	Courses            []StudentCourse       `json:"courses" validate:"dive"`
	PostClassQuestions []PostClassQuestion   `json:"post_class_questions"`
	Studio             StudioDefaults        `json:"studio"`
	AI                 CannedAI              `json:"ai"`
}
