package models

// Tool identifies a planner graph node.
type Tool string

const (
	ToolHeadline Tool = "headline"
	ToolURLLLM   Tool = "url_llm"
	ToolOCR      Tool = "ocr"
	ToolPolicy   Tool = "policy"
	ToolStop     Tool = "stop"
)

// MonitorState is the planner's working memory for a single event. It is
// transient: constructed at the start of ingest/ingest_upgrade and
// discarded once a Decision has been produced.
type MonitorState struct {
	Event        *Event
	ChildProfile *ChildProfile

	FastScores map[string]float64
	Judge      *JudgeResult
	Headline   *HeadlineResult
	Confidence float64
	OCRText    string

	NeedLLM                bool
	NeedOCR                bool
	NeedsScreenshot        bool
	HasOCRRun              bool
	IsUpgrade              bool
	HeadlineShortCircuited bool

	LastToolRun Tool
	NextTool    Tool
	LoopCount   int

	Decision *Decision
}

// MaxLoops bounds the planner's per-event iteration count.
const MaxLoops = 5
