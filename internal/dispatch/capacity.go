package dispatch

import (
	"regexp"
	"strconv"

	"ecocollect-backend/internal/models"
)

// ApplyCompletion adds a completed task's collected weight to the driver's
// running load. Negative input is clamped to zero, never rejected. Once
// the running load reaches or exceeds the ceiling the vehicle is modeled
// as emptied at the disposal site and the load resets to zero.
func ApplyCompletion(currentKg, collectedKg, maxKg float64) float64 {
	if collectedKg < 0 {
		collectedKg = 0
	}
	if maxKg <= 0 {
		maxKg = models.DefaultMaxCapacityKg
	}
	newWeight := currentKg + collectedKg
	if newWeight >= maxKg {
		return 0
	}
	return newWeight
}

var weightPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// ExtractWeight pulls a best-effort numeric kg value out of a free-text
// quantity field ("around 5.5 kg" -> 5.5). Used when a driver finishes a
// task without reporting an explicit weight. Returns 0 when nothing in
// the text parses as a number.
func ExtractWeight(text string) float64 {
	match := weightPattern.FindString(text)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}
