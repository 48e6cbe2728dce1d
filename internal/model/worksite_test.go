package model

import "testing"

func TestWorksiteBoundaryContains(t *testing.T) {
    b := WorksiteBoundary{MinLat: 40, MaxLat: 41, MinLon: -74, MaxLon: -73}
    swapped := WorksiteBoundary{MinLat: 40, MaxLat: 41, MinLon: -73, MaxLon: -74}

    tests := []struct {
        name     string
        lat, lon float64
        want     bool
    }{
        {"inside", 40.5, -73.5, true},
        {"east_of_site", 40.5, -72.0, false},
        {"south_west_corner", 40, -74, true},
        {"north_east_corner", 41, -73, true},
        {"just_north", 41.000001, -73.5, false},
        {"just_west", 40.5, -74.000001, false},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := b.Contains(tt.lat, tt.lon); got != tt.want {
                t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
            }
            if got := swapped.Contains(tt.lat, tt.lon); got != tt.want {
                t.Errorf("swapped Contains(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
            }
        })
    }
}

func TestWorksiteBoundaryArea(t *testing.T) {
    a := WorksiteBoundary{MinLat: 40, MaxLat: 42, MinLon: -73, MaxLon: -74}
    if got := a.Area(); got != 2 {
        t.Fatalf("Area() = %v, want 2", got)
    }
}

func TestEmployeeProfileFillFrom(t *testing.T) {
    known := EmployeeProfile{SubContractor: "Acme", EmployeeName: "Jo", PhoneNumber: "555"}
    tests := []struct {
        name string
        in   EmployeeProfile
        want EmployeeProfile
    }{
        {"empty request", EmployeeProfile{}, known},
        {"same pair", EmployeeProfile{SubContractor: " Acme ", EmployeeName: "Jo"}, known},
        {"name only, matching", EmployeeProfile{EmployeeName: "Jo"}, known},
        {"phone only", EmployeeProfile{PhoneNumber: "777"}, EmployeeProfile{SubContractor: "Acme", EmployeeName: "Jo", PhoneNumber: "777"}},
        {"other name", EmployeeProfile{EmployeeName: " Sam "}, EmployeeProfile{EmployeeName: "Sam"}},
        {"other subcontractor", EmployeeProfile{SubContractor: "Other Co", EmployeeName: "Jo"}, EmployeeProfile{SubContractor: "Other Co", EmployeeName: "Jo"}},
        {"other subcontractor only", EmployeeProfile{SubContractor: "Other Co"}, EmployeeProfile{SubContractor: "Other Co"}},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := tt.in.Normalize().FillFrom(known); got != tt.want {
                t.Fatalf("FillFrom = %+v, want %+v", got, tt.want)
            }
        })
    }
}
