package model

import "context"

// Difficulty is the difficulty of a knowledge point.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// KnowledgePoint is a tagged curriculum concept with a class mastery rate.
type KnowledgePoint struct {
	ID          string     `json:"id" validate:"required"`
	Statement   string     `json:"statement" validate:"required"`
	MasteryRate int        `json:"mastery_rate" validate:"gte=0,lte=100"`
	Difficulty  Difficulty `json:"difficulty" validate:"oneof=Easy Medium Hard"`
}

// QuestionKind classifies an in-class quiz question.
type QuestionKind string

const (
	KindCalculation QuestionKind = "calculation"
	KindReasoning   QuestionKind = "reasoning"
	KindApplication QuestionKind = "application"
)

// QuizQuestion is one entry of the in-class quiz timeline with its live stats.
type QuizQuestion struct {
	ID                 string       `json:"id" validate:"required"`
	Kind               QuestionKind `json:"kind" validate:"oneof=calculation reasoning application"`
	Content            string       `json:"content" validate:"required"`
	CorrectRate        int          `json:"correct_rate" validate:"gte=0,lte=100"`
	AvgTime            int          `json:"avg_time"` // seconds
	RelatedKnowledgeID string       `json:"related_knowledge_id"`
}

// MetricStatus colours a pre-class metric card.
type MetricStatus string

const (
	MetricGood    MetricStatus = "good"
	MetricWarning MetricStatus = "warning"
	MetricNeutral MetricStatus = "neutral"
)

// PreClassMetric is a headline number shown before the lesson.
type PreClassMetric struct {
	Label   string       `json:"label"`
	Value   string       `json:"value"`
	Subtext string       `json:"subtext"`
	Status  MetricStatus `json:"status"`
}

// MasteryStatus is the band a student falls into by mastery score.
type MasteryStatus string

const (
	StatusMastered MasteryStatus = "mastered"
	StatusPassing  MasteryStatus = "passing"
	StatusAtRisk   MasteryStatus = "at-risk"
)

// StudentMastery is a student's overall mastery, as shown on the seating map.
type StudentMastery struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	MasteryScore int           `json:"mastery_score"`
	Status       MasteryStatus `json:"status"`
}

// StudentResult extends StudentMastery with per knowledge point mastery.
type StudentResult struct {
	StudentMastery
	KPMastery     map[string]int `json:"kp_mastery"`
	PreClassScore int            `json:"pre_class_score"`
}

// ChartSlice is one slice of a donut or bar chart.
type ChartSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// TrendPoint is one point of the class vs grade average trend.
type TrendPoint struct {
	Name     string `json:"name"`
	ClassAvg int    `json:"class_avg"`
	GradeAvg int    `json:"grade_avg"`
}

// RadarAxis is one spoke of a radar chart. B is only drawn in compare mode.
type RadarAxis struct {
	Subject  string `json:"subject"`
	FullText string `json:"full_text,omitempty"`
	A        int    `json:"a"`
	B        int    `json:"b,omitempty"`
	C        int    `json:"c,omitempty"`
	FullMark int    `json:"full_mark"`
}

// HomeworkTier is the difficulty tier of a homework question.
type HomeworkTier string

const (
	TierBasic    HomeworkTier = "basic"
	TierAdvanced HomeworkTier = "advanced"
	TierExtended HomeworkTier = "extended"
)

// HomeworkQuestion is an item of the homework pool.
type HomeworkQuestion struct {
	ID         string       `json:"id" validate:"required"`
	Content    string       `json:"content" validate:"required"`
	Difficulty HomeworkTier `json:"difficulty" validate:"oneof=basic advanced extended"`
	Type       string       `json:"type"`
}

// StudentHomework is the homework plan generated for one student.
type StudentHomework struct {
	StudentID   int                `json:"student_id"`
	StudentName string             `json:"student_name"`
	Questions   []HomeworkQuestion `json:"questions"`
	Comment     string             `json:"comment"`
	Pushed      bool               `json:"pushed"`
}

// ResourceType is the media type of a teaching resource.
type ResourceType string

const (
	ResourceVideo    ResourceType = "video"
	ResourceImage    ResourceType = "image"
	ResourceDocument ResourceType = "document"
)

// ResourceItem is a file attached to the lesson in the preparation studio.
type ResourceItem struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Type   ResourceType `json:"type"`
	Size   string       `json:"size"`
	Status string       `json:"status"`
}

// AssessmentLevel is one row of a rubric.
type AssessmentLevel struct {
	Grade       string `json:"grade"`
	Label       string `json:"label"`
	Description string `json:"description"`
	ScoreRange  [2]int `json:"score_range"`
}

// AssessmentDimension is a named, weighted assessment axis.
type AssessmentDimension struct {
	ID                  string            `json:"id" validate:"required"`
	Name                string            `json:"name" validate:"required"`
	MaxScore            int               `json:"max_score" validate:"gt=0"`
	Weight              float64           `json:"weight" validate:"gte=0,lte=1"`
	Description         string            `json:"description"`
	RelatedKnowledgeIDs []string          `json:"related_knowledge_ids"`
	Levels              []AssessmentLevel `json:"levels,omitempty"`
}

// AssessmentModel groups dimensions with pass/excellent thresholds.
type AssessmentModel struct {
	Name       string                `json:"name"`
	Dimensions []AssessmentDimension `json:"dimensions"`
	Thresholds struct {
		Pass      int `json:"pass"`
		Excellent int `json:"excellent"`
	} `json:"thresholds"`
}

// QuizStage tells whether a builder question belongs to the pre-class or in-class quiz.
type QuizStage string

const (
	StagePre QuizStage = "pre"
	StageIn  QuizStage = "in"
)

// ItemType is the answer format of a builder question.
type ItemType string

const (
	ItemSingleChoice   ItemType = "single_choice"
	ItemMultipleChoice ItemType = "multiple_choice"
	ItemTrueFalse      ItemType = "true_false"
	ItemSubjective     ItemType = "subjective"
)

// QuizItem is a question being authored in the preparation studio.
type QuizItem struct {
	ID                  string    `json:"id" validate:"required"`
	Stage               QuizStage `json:"stage" validate:"omitempty,oneof=pre in"`
	Type                ItemType  `json:"type" validate:"oneof=single_choice multiple_choice true_false subjective"`
	Content             string    `json:"content" validate:"required"`
	Options             []string  `json:"options"`
	CorrectOptions      []int     `json:"correct_options"`
	CorrectBoolean      *bool     `json:"correct_boolean,omitempty"`
	Score               int       `json:"score" validate:"gte=0,lte=100"`
	RelatedKnowledgeIDs []string  `json:"related_knowledge_ids"`
	Analysis            string    `json:"analysis"`
	Position            int       `json:"-"`
}

// CourseStatus is where a course sits in the student's schedule.
type CourseStatus string

const (
	CourseUpcoming  CourseStatus = "upcoming"
	CourseOngoing   CourseStatus = "ongoing"
	CourseCompleted CourseStatus = "completed"
)

// StudentCourse is a course card in the student center.
type StudentCourse struct {
	ID       string       `json:"id" validate:"required"`
	Title    string       `json:"title"`
	Teacher  string       `json:"teacher"`
	Time     string       `json:"time"`
	Status   CourseStatus `json:"status" validate:"oneof=upcoming ongoing completed"`
	Progress int          `json:"progress" validate:"gte=0,lte=100"`
}

// ImprovedStudent is a "growth star" card on the teacher dashboard.
type ImprovedStudent struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	AvatarSeed string      `json:"avatar_seed"`
	PreScore   int         `json:"pre_score"`
	PostScore  int         `json:"post_score"`
	Growth     int         `json:"growth"`
	Radar      []RadarAxis `json:"radar"`
	Comment    string      `json:"comment"`
}

// Agent is an assistant that can be attached to a course.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UploadStatus tracks a student's photo upload.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadSubmitted UploadStatus = "submitted"
)

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}
