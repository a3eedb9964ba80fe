package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show the offer type column.
	LayoutWideWidth = 120
)

// Display limits.
const (
	// ActivityLimit is the number of gateway events kept for the activity view.
	ActivityLimit = 200

	// LogTailLines is the number of log file lines shown in the activity view.
	LogTailLines = 200
)
