package dispatch

import (
	"strings"

	"ecocollect-backend/internal/models"
)

// VehicleGeneral is the fallback requirement when no keyword matches.
const VehicleGeneral = "General Van"

// RequiredVehicle maps a declared waste type to the vehicle class the
// dispatcher should look for. Advisory only: it labels the dispatch UI
// and never filters drivers out of eligibility.
func RequiredVehicle(wasteType string) string {
	w := strings.ToLower(wasteType)
	switch {
	case strings.Contains(w, "bio"):
		return "Bio-degradable Waste Van"
	case strings.Contains(w, "plastic"), strings.Contains(w, "bottle"):
		return "Plastic garbage Van"
	case strings.Contains(w, "glass"):
		return "Glass Waste Van"
	case strings.Contains(w, "dry"):
		return "Dry Waste Van"
	case strings.Contains(w, "mixed"):
		return "Mixed Waste Van"
	}
	return VehicleGeneral
}

// VehicleMatches reports whether a driver's vehicle suits the waste type.
// Keyword rules are checked in a fixed order; the first rule whose waste
// keyword applies and whose vehicle keyword matches wins.
func VehicleMatches(wasteType, vehicleType string) bool {
	if vehicleType == "" {
		return false
	}
	w := strings.ToLower(wasteType)
	v := strings.ToLower(vehicleType)

	if strings.Contains(w, "bio") && (strings.Contains(v, "bio") || strings.Contains(v, "organic")) {
		return true
	}
	if (strings.Contains(w, "plastic") || strings.Contains(w, "bottle")) && strings.Contains(v, "plastic") {
		return true
	}
	if strings.Contains(w, "glass") && strings.Contains(v, "glass") {
		return true
	}
	if strings.Contains(w, "mixed") && (strings.Contains(v, "mixed") || strings.Contains(v, "general")) {
		return true
	}
	if strings.Contains(w, "dry") && (strings.Contains(v, "dry") || strings.Contains(v, "recycling")) {
		return true
	}
	return false
}

// RecommendDrivers returns, preserving input order, the ids of drivers
// whose vehicle matches the waste type. The result flags preferred
// drivers for the dispatcher; drivers outside it remain assignable.
func RecommendDrivers(wasteType string, drivers []models.User) []string {
	var preferred []string
	for _, d := range drivers {
		if VehicleMatches(wasteType, d.VehicleType) {
			preferred = append(preferred, d.ID)
		}
	}
	return preferred
}
