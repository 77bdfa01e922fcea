package notedoc

// InstructionType enumerates the structured edits the note surface accepts.
type InstructionType string

const (
	InsertTitle   InstructionType = "INSERT_TITLE"
	InsertBullet  InstructionType = "INSERT_BULLET"
	InsertImage   InstructionType = "INSERT_IMAGE"
	InsertPDFName InstructionType = "INSERT_PDF_NAME"
)

// Instruction is one queued note edit. Payload carries the heading text,
// bullet text, or image data depending on the type. HighlightID, when set,
// back-references the highlight that produced the edit. Level overrides the
// nesting depth for bullet and image inserts.
type Instruction struct {
	Type        InstructionType `json:"type"`
	Payload     string          `json:"payload"`
	HighlightID string          `json:"highlightId,omitempty"`
	Level       int             `json:"level,omitempty"`
}
