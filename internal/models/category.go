package models

import "strings"

// Category labels a photo. It is either a built-in label or user defined.
type Category string

const (
	CategoryPeople        Category = "People"
	CategoryLandscapes    Category = "Landscapes"
	CategoryAnimals       Category = "Animals"
	CategoryObjects       Category = "Objects"
	CategoryIndoor        Category = "Indoor"
	CategoryOutdoor       Category = "Outdoor"
	CategorySelfies       Category = "Selfies"
	CategoryOthers        Category = "Others"
	CategoryUncategorized Category = "Uncategorized"
)

var builtinCategories = []Category{
	CategoryPeople,
	CategoryLandscapes,
	CategoryAnimals,
	CategoryObjects,
	CategoryIndoor,
	CategoryOutdoor,
	CategorySelfies,
	CategoryOthers,
	CategoryUncategorized,
}

// Builtins returns the fixed category enumeration
func Builtins() []Category {
	out := make([]Category, len(builtinCategories))
	copy(out, builtinCategories)
	return out
}

// AIChoices returns the closed list the categorizer may answer with
func AIChoices() []Category {
	out := make([]Category, 0, len(builtinCategories)-1)
	for _, c := range builtinCategories {
		if c != CategoryUncategorized {
			out = append(out, c)
		}
	}
	return out
}

// IsBuiltin reports whether c is part of the fixed enumeration
func (c Category) IsBuiltin() bool {
	for _, b := range builtinCategories {
		if strings.EqualFold(string(b), string(c)) {
			return true
		}
	}
	return false
}

// MatchAIChoice maps a free-form model answer onto the closed list
func MatchAIChoice(answer string) (Category, bool) {
	answer = strings.Trim(strings.TrimSpace(answer), ".\"'`*")
	for _, c := range AIChoices() {
		if strings.EqualFold(answer, string(c)) {
			return c, true
		}
	}
	return CategoryUncategorized, false
}
