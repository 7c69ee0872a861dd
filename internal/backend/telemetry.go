package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"plant_monitor/internal/telemetry"

	"github.com/relvacode/iso8601"
	"github.com/spf13/cast"
)

const monitoringLogPath = "monitoring-plans-log"

// layoutSQLDateTime is what SQL-backed APIs emit when they skip ISO 8601.
const layoutSQLDateTime = "2006-01-02 15:04:05"

var _ telemetry.Fetcher = (*Client)(nil)

// logWire is one raw log record. Fields are untyped so that numeric strings
// and nulls survive decoding.
type logWire struct {
	Temperatura any `json:"temperatura"`
	Umidade     any `json:"umidade"`
	CreatedAt   any `json:"created_at"`
}

// Fetch retrieves the monitoring log of plantID within r.
//
// A successful reply whose body is not a {"data": [...]} document yields no
// entries and no error, so the dashboard shows "no data" instead of a failure.
func (c *Client) Fetch(ctx context.Context, plantID string, r telemetry.DateRange) ([]telemetry.LogEntry, error) {
	// JoinPath cleans dot segments, which would address another resource.
	switch strings.TrimSpace(plantID) {
	case "", ".", "..":
		return nil, &telemetry.FetchError{
			Kind: telemetry.KindInvalidArgument,
			Op:   "GET /" + monitoringLogPath,
			Err:  fmt.Errorf("plant id %q", plantID),
		}
	}
	u := c.endpoint(monitoringLogPath, plantID)
	q := u.Query()
	q.Set("start_date", r.StartParam())
	q.Set("end_date", r.EndParam())
	u.RawQuery = q.Encode()

	resp, err := c.doJSON(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	records, ok := decodeLogRecords(resp.body)
	if !ok {
		c.logw("telemetry_payload_malformed",
			"plant_id", plantID, "range", r.String(), "kind", telemetry.KindMalformedPayload)
		return nil, nil
	}

	entries := make([]telemetry.LogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, telemetry.LogEntry{
			Timestamp:   parseTimestamp(rec.CreatedAt, c.loc),
			Temperature: floatPtr(rec.Temperatura),
			Humidity:    floatPtr(rec.Umidade),
		})
	}
	return entries, nil
}

// decodeLogRecords returns false when body does not carry a data array.
// A null or missing data field is treated the same way.
func decodeLogRecords(body []byte) ([]logWire, bool) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, false
	}
	var records []logWire
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	return records, true
}

// floatPtr accepts JSON numbers and numeric strings; anything else is nil.
func floatPtr(v any) *float64 {
	switch v.(type) {
	case float64, string:
	default:
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

// parseTimestamp returns the zero time when v is not a recognizable timestamp.
// Values without a zone designator are wall-clock times in loc.
func parseTimestamp(v any, loc *time.Location) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	if t, err := iso8601.ParseString(s); err == nil {
		if hasZone(s) {
			return t
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}
	if t, err := time.ParseInLocation(layoutSQLDateTime, s, loc); err == nil {
		return t
	}
	return time.Time{}
}

// hasZone reports whether the time part of an ISO 8601 string ends in Z or an offset.
func hasZone(s string) bool {
	i := strings.IndexByte(s, 'T')
	if i < 0 {
		return false
	}
	return strings.ContainsAny(s[i+1:], "Zz+-")
}
