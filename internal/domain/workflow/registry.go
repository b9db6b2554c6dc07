package workflow

import "fmt"

// Category is a closed enumeration of task categories. Each category maps
// to exactly one approval workflow in the registry.
type Category string

const (
	CategoryMortalityDiscard       Category = "mortality_discard"
	CategoryDailyCloningTransplant Category = "daily_cloning_transplant"
	CategoryWeeklyGrowthMonitoring Category = "weekly_growth_monitoring"
	CategoryWeeklyCropHygiene      Category = "weekly_crop_hygiene"
	CategoryGeneral                Category = "general"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ApprovalWorkflow is the ordered sequence of stage role labels a task of
// a given category walks through. Stage indices are 0..TotalStages()-1.
type ApprovalWorkflow struct {
	Category Category
	Stages   []string
}

// TotalStages returns the number of approval stages
func (w ApprovalWorkflow) TotalStages() int {
	return len(w.Stages)
}

// StageLabel returns the role label for a stage index, or "" when the
// index is out of range.
func (w ApprovalWorkflow) StageLabel(stage int) string {
	if stage < 0 || stage >= len(w.Stages) {
		return ""
	}
	return w.Stages[stage]
}

// registry is the static category-to-workflow table. Every category of the
// closed enum has an entry with at least one stage.
var registry = map[Category]ApprovalWorkflow{
	CategoryMortalityDiscard: {
		Category: CategoryMortalityDiscard,
		Stages:   []string{"Grower", "Manager", "QA"},
	},
	CategoryDailyCloningTransplant: {
		Category: CategoryDailyCloningTransplant,
		Stages:   []string{"Performer", "Grower/Manager"},
	},
	CategoryWeeklyGrowthMonitoring: {
		Category: CategoryWeeklyGrowthMonitoring,
		Stages:   []string{"Grower", "Manager"},
	},
	CategoryWeeklyCropHygiene: {
		Category: CategoryWeeklyCropHygiene,
		Stages:   []string{"Staff", "Manager"},
	},
	CategoryGeneral: {
		Category: CategoryGeneral,
		Stages:   []string{"Grower/Manager"},
	},
}

// Categories returns all registered task categories
func Categories() []Category {
	cats := make([]Category, 0, len(registry))
	for c := range registry {
		cats = append(cats, c)
	}
	return cats
}

// ApprovalWorkflowFor returns the approval workflow for a category. The
// lookup is total over the closed enum; an error here means the caller
// passed a category that was never registered.
func ApprovalWorkflowFor(category Category) (ApprovalWorkflow, error) {
	wf, ok := registry[category]
	if !ok {
		return ApprovalWorkflow{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return wf, nil
}
