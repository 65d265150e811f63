package domain

import "slices"

// FullSection is the implicit section covering the whole document.
const FullSection = "full"

// Direction labels of a bidirectional evaluation.
const (
	LabelAVsB = "A_vs_B"
	LabelBVsA = "B_vs_A"
)

type Mode string

const (
	ModeBaseline       Mode = "baseline"
	ModeChainOfThought Mode = "cot"
)

func (m Mode) UseCoT() bool {
	return m == ModeChainOfThought
}

func (m Mode) Valid() bool {
	return m == ModeBaseline || m == ModeChainOfThought
}

// File is an upload payload as picked by the user.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Document struct {
	ID       string
	Text     string
	Sections []string
}

// HasSection reports whether name can be selected for this document.
func (d Document) HasSection(name string) bool {
	return name == FullSection || slices.Contains(d.Sections, name)
}

// DefaultSection is the first indexed section, or FullSection when the index is empty.
func (d Document) DefaultSection() string {
	if len(d.Sections) == 0 {
		return FullSection
	}
	return d.Sections[0]
}

type Summary struct {
	Mode Mode   `json:"mode"`
	Text string `json:"text"`
}

type Scores struct {
	Rouge1 float64 `json:"rouge1"`
	Rouge2 float64 `json:"rouge2"`
	RougeL float64 `json:"rougeL"`
	BLEU   float64 `json:"bleu"`
}

type DirectionalScores struct {
	Label  string `json:"label"`
	Scores Scores `json:"scores"`
}

// EvaluationRecord holds both directions of an evaluation: baseline as system
// against chain-of-thought as reference, and the reverse.
type EvaluationRecord struct {
	AVsB DirectionalScores `json:"aVsB"`
	BVsA DirectionalScores `json:"bVsA"`
}
