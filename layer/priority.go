package layer

// Named priorities for the surfaces of a session-manager TUI. Gaps are left
// so new surfaces can slot in between. Any int is a valid priority; these
// only keep the common surfaces consistent with each other.
const (
	PriorityQuitConfirm    = 1020
	PriorityConfirm        = 1000
	PriorityRename         = 900
	PriorityPromptInput    = 850
	PriorityForm           = 800
	PriorityRepoPicker     = 700
	PriorityTopicPicker    = 650
	PriorityHelp           = 500
	PrioritySettings       = 450
	PriorityPlanViewer     = 400
	PriorityContextMenu    = 300
	PrioritySearch         = 200
	PriorityTooltip        = 100
	PriorityBackgroundHint = -100
)
