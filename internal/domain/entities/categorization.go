package entities

// Category is the primary nature of a dependency-update PR.
type Category string

const (
	CategorySecurity Category = "security"
	CategoryBreaking Category = "breaking"
	CategoryGrouped  Category = "grouped"
	CategoryRoutine  Category = "routine"
)

// DefaultCategoryPriority is the selection order for the primary category
// when the configuration does not override it. Security wins even over a
// larger breaking change: urgency over scope.
var DefaultCategoryPriority = []Category{
	CategorySecurity,
	CategoryBreaking,
	CategoryGrouped,
	CategoryRoutine,
}

// CategorySummary holds plain aggregates over the dependency list, used
// verbatim by the synthesizer and exposed as structured outputs.
type CategorySummary struct {
	SecurityUpdates     int
	BreakingChanges     int
	HighPriorityUpdates int
	AverageRiskLevel    Severity
}

// CategorizationResult merges impact and detector signals into a primary
// category with supporting categories and a confidence level.
type CategorizationResult struct {
	PrimaryCategory Category
	AllCategories   []Category
	Confidence      Confidence
	Summary         CategorySummary
}

// HasCategory reports whether the result carries the given category.
func (r CategorizationResult) HasCategory(category Category) bool {
	for _, c := range r.AllCategories {
		if c == category {
			return true
		}
	}
	return false
}
