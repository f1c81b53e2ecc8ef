package domain

import "strings"

// VehicleClass is the normalized fee bucket for a vehicle type.
type VehicleClass string

const (
	VehicleClassBike  VehicleClass = "BIKE"
	VehicleClassAuto  VehicleClass = "AUTO"
	VehicleClassXL    VehicleClass = "XL"
	VehicleClassMini  VehicleClass = "MINI"
	VehicleClassSedan VehicleClass = "SEDAN"
)

// NormalizeVehicleType maps a free-text vehicle type string to a VehicleClass.
// Matching is case-insensitive and substring based; anything unrecognized
// falls into the sedan bucket.
func NormalizeVehicleType(vehicleType string) VehicleClass {
	v := strings.ToLower(strings.TrimSpace(vehicleType))

	switch {
	case strings.Contains(v, "bike"), strings.Contains(v, "2w"):
		return VehicleClassBike
	case strings.Contains(v, "auto"), strings.Contains(v, "3w"):
		return VehicleClassAuto
	case strings.Contains(v, "xl"), strings.Contains(v, "suv"), strings.Contains(v, "xuv"):
		return VehicleClassXL
	case strings.Contains(v, "mini"), strings.Contains(v, "hatch"):
		return VehicleClassMini
	default:
		return VehicleClassSedan
	}
}
