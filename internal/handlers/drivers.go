package handlers

import (
	"log"
	"net/http"

	"ecocollect-backend/internal/dispatch"
	"ecocollect-backend/internal/models"
	"ecocollect-backend/pkg/utils"
)

// GetDrivers returns the fleet with each driver's busy-state. When a
// waste_type query parameter is given, the response also carries the
// vehicle class suited to that waste and which drivers run one. The
// recommendation is advisory: any driver stays assignable.
func GetDrivers(svc *dispatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drivers, err := svc.ListDriversWithAvailability()
		if err != nil {
			log.Printf("❌ Failed to list drivers: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list drivers")
			return
		}

		response := map[string]interface{}{
			"success": true,
			"drivers": drivers,
		}

		if wasteType := r.URL.Query().Get("waste_type"); wasteType != "" {
			fleet := make([]models.User, len(drivers))
			for i, d := range drivers {
				fleet[i] = models.User{ID: d.ID, VehicleType: d.VehicleType}
			}
			response["required_vehicle"] = dispatch.RequiredVehicle(wasteType)
			response["recommended_driver_ids"] = dispatch.RecommendDrivers(wasteType, fleet)
		}

		utils.RespondJSON(w, http.StatusOK, response)
	}
}
