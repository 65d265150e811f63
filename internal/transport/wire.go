package transport

import "encoding/json"

const (
	EndpointUpload    = "upload"
	EndpointSummarize = "summarize"
	EndpointEvaluate  = "evaluate"
)

type uploadResponse struct {
	DocumentID  string   `json:"document_id"`
	Sections    []string `json:"sections"`
	TextPreview string   `json:"text_preview"`
}

type SummarizeRequest struct {
	Text        string `json:"text"`
	UseCoT      bool   `json:"use_cot"`
	SectionName string `json:"section_name"`
}

// SummarizeResponse keeps the summary undecoded: the service answers either
// with a bare string or with an object carrying a text field.
type SummarizeResponse struct {
	Summary json.RawMessage `json:"summary"`
	UseCoT  bool            `json:"use_cot"`
	Model   string          `json:"model"`
}

type EvaluateRequest struct {
	SystemSummary    string `json:"system_summary"`
	ReferenceSummary string `json:"reference_summary"`
	Label            string `json:"label"`
}

type evaluateResponse struct {
	Rouge *struct {
		Rouge1 *float64 `json:"rouge1"`
		Rouge2 *float64 `json:"rouge2"`
		RougeL *float64 `json:"rougeL"`
	} `json:"rouge"`
	BLEU *float64 `json:"bleu"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}
