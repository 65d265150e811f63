package server

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

type uploadResponse struct {
	DocumentID  string   `json:"document_id"`
	Sections    []string `json:"sections"`
	TextPreview string   `json:"text_preview"`
}

type documentResponse struct {
	uploadResponse

	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	CreatedAt   string `json:"created_at"`
}

type summarizeRequest struct {
	Text        string `json:"text"`
	UseCoT      bool   `json:"use_cot"`
	SectionName string `json:"section_name"`
}

type summaryText struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary summaryText `json:"summary"`
	UseCoT  bool        `json:"use_cot"`
	Model   string      `json:"model"`
}

type evaluateRequest struct {
	SystemSummary    string `json:"system_summary"    validate:"required"`
	ReferenceSummary string `json:"reference_summary" validate:"required"`
	Label            string `json:"label"             validate:"omitempty,max=64"`
}

type rougeScores struct {
	Rouge1 float64 `json:"rouge1"`
	Rouge2 float64 `json:"rouge2"`
	RougeL float64 `json:"rougeL"`
}

type evaluateResponse struct {
	Label string      `json:"label"`
	Rouge rougeScores `json:"rouge"`
	BLEU  float64     `json:"bleu"`
}
