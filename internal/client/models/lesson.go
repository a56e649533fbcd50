package models

import "time"

type ContentType string

const (
	NotesSimple  ContentType = "NOTES_SIMPLE"
	NotesPremium ContentType = "NOTES_PREMIUM"
	PDFFree      ContentType = "PDF_FREE"
	PDFPremium   ContentType = "PDF_PREMIUM"
	PDFViewer    ContentType = "PDF_VIEWER"
	MCQSimple    ContentType = "MCQ_SIMPLE"
	MCQAnalysis  ContentType = "MCQ_ANALYSIS"
)

func (t ContentType) IsPDF() bool {
	return t == PDFFree || t == PDFPremium || t == PDFViewer
}

func (t ContentType) IsMCQ() bool {
	return t == MCQSimple || t == MCQAnalysis
}

// IsPremium reports whether students pay credits to open this type.
func (t ContentType) IsPremium() bool {
	return t == NotesPremium || t == PDFPremium || t == MCQAnalysis
}

// LessonContent is what a student sees for one chapter and content type.
type LessonContent struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Subtitle     string      `json:"subtitle,omitempty"`
	Type         ContentType `json:"type"`
	Content      string      `json:"content"`
	MCQData      []MCQItem   `json:"mcqData,omitempty"`
	IsComingSoon bool        `json:"isComingSoon,omitempty"`
	DateCreated  time.Time   `json:"dateCreated"`
}
