package model

// LessonReport is the top-level JSON structure for a lesson report export.
type LessonReport struct {
	Lesson           LessonInfo        `json:"lesson"`
	KnowledgePoints  []KnowledgePoint  `json:"knowledge_points"`
	ClassAverages    map[string]int    `json:"class_averages"`
	Distribution     []ChartSlice      `json:"distribution"`
	StatusCounts     map[string]int    `json:"status_counts"`
	InClassQuestions []QuizQuestion    `json:"in_class_questions"`
	Report           Report            `json:"report"`
	ClassroomScore   int               `json:"classroom_score"`
	Students         []StudentReport   `json:"students"`
	Homework         []StudentHomework `json:"homework,omitempty"`
}

// StudentReport holds one student's pre-class and in-class results for export.
type StudentReport struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	PreClassScore int            `json:"pre_class_score"`
	InClassScore  int            `json:"in_class_score"`
	Status        MasteryStatus  `json:"status"`
	KPMastery     map[string]int `json:"kp_mastery"`
}
