// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in ClockEvent.Type.
const (
    EventClockIn  = "clock.in"
    EventClockOut = "clock.out"
)

// ClockEventsQueue is the durable queue both clock transitions are
// published to.
const ClockEventsQueue = "timeclock.events"

// ClockEvent is published after every accepted clock transition. It carries
// enough information for downstream consumers to log, notify, or feed
// reporting without querying the primary database. Photos are not
// included.
type ClockEvent struct {
    Type          string  `json:"type"`
    RecordID      uint64  `json:"record_id"`
    Token         string  `json:"token"`
    SubContractor string  `json:"sub_contractor"`
    EmployeeName  string  `json:"employee_name"`
    Worksite      string  `json:"worksite"`
    Lat           float64 `json:"lat"`
    Lon           float64 `json:"lon"`
    ClockInAt     string  `json:"clock_in_at"`
    ClockOutAt    string  `json:"clock_out_at,omitempty"`
    HasPhoto      bool    `json:"has_photo"`
}
