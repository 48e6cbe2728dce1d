package handler

import (
    "time"

    "github.com/iliyamo/timeclock/internal/model"
)

// ----- DTOs -----

type profilePart struct {
    SubContractor string `json:"subContractor"`
    Employee      string `json:"employee"`
    Number        string `json:"number"`
}

func toProfilePart(p *model.EmployeeProfile) *profilePart {
    if p == nil {
        return nil
    }
    return &profilePart{SubContractor: p.SubContractor, Employee: p.EmployeeName, Number: p.PhoneNumber}
}

type recordPart struct {
    ID            uint64     `json:"id"`
    Token         string     `json:"cookie"`
    SubContractor string     `json:"subContractor"`
    Employee      string     `json:"employee"`
    Number        string     `json:"number,omitempty"`
    Worksite      string     `json:"worksite"`
    ClockIn       time.Time  `json:"clock_in_time"`
    ClockOut      *time.Time `json:"clock_out_time"`
    Lat           float64    `json:"lat"`
    Lon           float64    `json:"lon"`
    Notes         string     `json:"notes,omitempty"`
    HasPhoto      bool       `json:"has_photo"`
    ClockOutNotes string     `json:"clock_out_notes,omitempty"`
    HasOutPhoto   bool       `json:"has_clock_out_photo"`
}

func toRecordPart(r *model.ClockRecord) recordPart {
    return recordPart{
        ID:            r.ID,
        Token:         r.Token,
        SubContractor: r.SubContractor,
        Employee:      r.EmployeeName,
        Number:        r.PhoneNumber,
        Worksite:      r.Worksite,
        ClockIn:       r.ClockInTime,
        ClockOut:      r.ClockOutTime,
        Lat:           r.Lat,
        Lon:           r.Lon,
        Notes:         r.Notes,
        HasPhoto:      r.Photo != nil,
        ClockOutNotes: r.ClockOutNotes,
        HasOutPhoto:   r.ClockOutPhoto != nil,
    }
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
