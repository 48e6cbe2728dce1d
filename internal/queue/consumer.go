package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartClockConsumer connects to RabbitMQ, declares the timeclock.events
// queue and appends every event to <logDir>/timeclock.log as a single
// human-readable line. It runs a reconnect loop with exponential backoff
// and never returns; processing errors are logged and the offending message
// is rejected so the consumer keeps going.
func StartClockConsumer(url, logDir string) {
    url = brokerURL(url)
    if logDir == "" {
        logDir = "logs"
    }

    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("clock-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        if err := consumeLoop(conn, logDir); err != nil {
            log.Printf("clock-consumer: consume loop ended: %v; reconnecting", err)
            _ = conn.Close()
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection, logDir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("clock-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(ClockEventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ClockEventsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(logDir, d.Body); err != nil {
            log.Printf("clock-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // no requeue, avoids tight loops on poison messages
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(logDir string, body []byte) error {
    var ev ClockEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, "timeclock.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatEvent(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatEvent(ev ClockEvent) string {
    at := ev.ClockInAt
    action := "Clocked in"
    if ev.Type == EventClockOut {
        at = ev.ClockOutAt
        action = "Clocked out"
    }
    return fmt.Sprintf("[%s] %s | record_id=%d | token=%s | subcontractor=%q | employee=%q | worksite=%q | lat=%.6f | lon=%.6f | photo=%t\n",
        at, action, ev.RecordID, ev.Token, ev.SubContractor, ev.EmployeeName, ev.Worksite, ev.Lat, ev.Lon, ev.HasPhoto)
}
