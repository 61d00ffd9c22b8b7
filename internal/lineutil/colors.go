package lineutil

// Shop palette used by the catalog carousel.
const (
	ColorRose600 = "#E11D48" // price lines
	ColorPink600 = "#DB2777" // primary buttons

	// Semantic aliases
	ColorPrice         = ColorRose600
	ColorButtonPrimary = ColorPink600
	ColorLabel         = "#666666" // descriptions, captions
)
