// Package entities contains core business entities.
// These are pure domain objects with no knowledge of storage, HTTP or Ollama.
package entities

import (
	"encoding/json"
	"time"
)

// Mode says which capture flow produced an entry.
type Mode string

const (
	// ModeSingle entries carry one free-text Response from the vision model.
	ModeSingle Mode = "single"
	// ModeTwoStage entries carry a ProblemDescription from the vision model
	// and a Solution from the coding model.
	ModeTwoStage Mode = "two_stage"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeSingle || m == ModeTwoStage
}

// Entry is one persisted capture cycle result.
// Timestamp is both identifier and sort key; it is not guaranteed unique.
type Entry struct {
	Timestamp          int64  `json:"timestamp"`
	Screenshot         string `json:"screenshot"`
	Mode               Mode   `json:"mode"`
	Response           string `json:"response,omitempty"`
	ProblemDescription string `json:"problemDescription,omitempty"`
	Solution           string `json:"solution,omitempty"`
	VisionModel        string `json:"visionModel,omitempty"`
	CodingModel        string `json:"codingModel,omitempty"`
}

// UnmarshalJSON classifies documents written before entries carried a mode.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	if !e.Mode.Valid() {
		e.Mode = ModeSingle
		if e.ProblemDescription != "" || e.Solution != "" {
			e.Mode = ModeTwoStage
		}
	}
	return nil
}

// CreatedAt returns the entry timestamp as a time.Time.
func (e Entry) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Primary returns the text a list view previews: the problem description
// for two-stage entries, the response otherwise.
func (e Entry) Primary() string {
	if e.Mode == ModeTwoStage {
		return e.ProblemDescription
	}
	return e.Response
}

// Sections returns the titled text blocks a detail view shows, in order.
func (e Entry) Sections() []Section {
	if e.Mode == ModeTwoStage {
		return []Section{
			{Title: "Problem", Text: e.ProblemDescription},
			{Title: "Solution", Text: e.Solution},
		}
	}
	return []Section{{Title: "Response", Text: e.Response}}
}

// Section is a titled piece of model output.
type Section struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// AnalysisResult is what one capture cycle's model calls produced.
type AnalysisResult struct {
	Mode               Mode
	Response           string
	ProblemDescription string
	Solution           string
}
