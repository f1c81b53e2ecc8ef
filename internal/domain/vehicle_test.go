package domain

import "testing"

func TestNormalizeVehicleType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  VehicleClass
	}{
		{"bike", VehicleClassBike},
		{"E-Bike", VehicleClassBike},
		{"2w", VehicleClassBike},
		{"auto", VehicleClassAuto},
		{"Auto Rickshaw", VehicleClassAuto},
		{"3w", VehicleClassAuto},
		{"xl", VehicleClassXL},
		{"SUV", VehicleClassXL},
		{"xuv700", VehicleClassXL},
		{"mini", VehicleClassMini},
		{"hatchback", VehicleClassMini},
		{"sedan", VehicleClassSedan},
		{"  Sedan  ", VehicleClassSedan},
		{"", VehicleClassSedan},
		{"limousine", VehicleClassSedan},
	}

	for _, tc := range testCases {
		if got := NormalizeVehicleType(tc.input); got != tc.want {
			t.Errorf("NormalizeVehicleType(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}
