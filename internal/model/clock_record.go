package model

import "time"

// ClockRecord is one row of the clock_records table.  A record is created
// open (ClockOutTime nil) on clock-in and closed exactly once on clock-out.
// Records are never deleted.  At most one open record may exist per token.
type ClockRecord struct {
    ID            uint64     // clock_records.id
    Token         string     // clock_records.token
    SubContractor string     // clock_records.sub_contractor
    EmployeeName  string     // clock_records.employee_name
    PhoneNumber   string     // clock_records.phone_number
    Worksite      string     // clock_records.worksite
    ClockInTime   time.Time  // clock_records.clock_in
    ClockOutTime  *time.Time // clock_records.clock_out (nullable)
    Lat           float64    // clock_records.lat
    Lon           float64    // clock_records.lon
    Notes         string     // clock_records.notes
    Photo         *Photo     // clock_records.photo / photo_mime
    ClockOutNotes string     // clock_records.clock_out_notes
    ClockOutPhoto *Photo     // clock_records.clock_out_photo / clock_out_photo_mime
}

// Photo is a decoded image attached to a clock transition.
type Photo struct {
    Data []byte
    MIME string
}

// IsOpen reports whether the record has not been clocked out yet.
func (r ClockRecord) IsOpen() bool { return r.ClockOutTime == nil }

// Profile returns the employee identity captured on the record.
func (r ClockRecord) Profile() EmployeeProfile {
    return EmployeeProfile{
        SubContractor: r.SubContractor,
        EmployeeName:  r.EmployeeName,
        PhoneNumber:   r.PhoneNumber,
    }
}
