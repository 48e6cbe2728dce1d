package model

import (
    "strings"
    "time"
)

// EmployeeProfile identifies a subcontractor employee.  Profiles are keyed
// by (SubContractor, EmployeeName) and are append-only: once registered a
// profile is never edited.
type EmployeeProfile struct {
    SubContractor string `json:"sub_contractor"` // employees.sub_contractor
    EmployeeName  string `json:"employee_name"`  // employees.employee_name
    PhoneNumber   string `json:"phone_number"`   // employees.phone_number
}

// Normalize trims surrounding whitespace from every field.
func (p EmployeeProfile) Normalize() EmployeeProfile {
    return EmployeeProfile{
        SubContractor: strings.TrimSpace(p.SubContractor),
        EmployeeName:  strings.TrimSpace(p.EmployeeName),
        PhoneNumber:   strings.TrimSpace(p.PhoneNumber),
    }
}

// SameEmployee reports whether p could describe the employee in other: every
// identity field set on p must equal the one on other.
func (p EmployeeProfile) SameEmployee(other EmployeeProfile) bool {
    if p.SubContractor != "" && p.SubContractor != other.SubContractor {
        return false
    }
    return p.EmployeeName == "" || p.EmployeeName == other.EmployeeName
}

// FillFrom copies fields that are blank on p from other.  When p names a
// different employee nothing is copied, so a phone number never crosses
// from one person to another.
func (p EmployeeProfile) FillFrom(other EmployeeProfile) EmployeeProfile {
    if !p.SameEmployee(other) {
        return p
    }
    if p.SubContractor == "" {
        p.SubContractor = other.SubContractor
    }
    if p.EmployeeName == "" {
        p.EmployeeName = other.EmployeeName
    }
    if p.PhoneNumber == "" {
        p.PhoneNumber = other.PhoneNumber
    }
    return p
}

// DeviceBinding links a device token to a profile.  A new row is appended
// every time a device registers; the newest binding for a token wins.
type DeviceBinding struct {
    ID        uint64          // employee_devices.id
    Token     string          // employee_devices.token
    Profile   EmployeeProfile // resolved through employee_devices.employee_id
    CreatedAt time.Time       // employee_devices.created_at
}
