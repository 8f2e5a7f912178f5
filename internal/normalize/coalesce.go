package normalize

import "github.com/schieber/jasstat/internal/model"

// IntOr coalesces an optional numeric field once, at the data-model boundary.
// Every "is this set, else fallback" decision in the package goes through here.
func IntOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// StrokesOr coalesces an optional stroke set, reporting whether it was set.
func StrokesOr(v *model.StrokeSet) (model.StrokeSet, bool) {
	if v == nil {
		return model.StrokeSet{}, false
	}
	return *v, true
}
