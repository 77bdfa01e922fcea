package tui

type stage int

const (
	stageBrowser stage = iota
	stageReading
)

type interactionMode int

const (
	modeNormal interactionMode = iota
	modeSelect
	modeConfirm
)

const heroTagline = "Read case files, highlight passages, keep the notes linked."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	highlightPreviewLimit     = 120
)

const (
	minZoom = 0.3
	maxZoom = 3.0
)

const confirmPlaceholder = "Optional comment. Enter records the highlight, Esc dismisses."
