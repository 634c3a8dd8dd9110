package dispatchers

type CommandCategory int

const (
	CategoryUncategorized CommandCategory = iota
	CategoryPublish                       // Analyze and post: run, watch
	CategoryServices                      // Long-running: daemon, webhook
	CategoryInspect                       // History, runs, insights
	CategoryConfig                        // Configuration
	CategoryPlumbing                      // Low-level: seed, metrics
)

func (c CommandCategory) String() string {
	switch c {
	case CategoryPublish:
		return "publish"
	case CategoryServices:
		return "run as a service"
	case CategoryInspect:
		return "inspect history and results"
	case CategoryConfig:
		return "configure story"
	case CategoryPlumbing:
		return "low-level commands (plumbing)"
	default:
		return "other commands"
	}
}

var categoryOrder = []CommandCategory{
	CategoryPublish,
	CategoryServices,
	CategoryInspect,
	CategoryConfig,
	CategoryPlumbing,
	CategoryUncategorized,
}

// CategoryOrder returns the display order for categories.
func CategoryOrder() []CommandCategory {
	return categoryOrder
}
