package session

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
)

// Row is one result row, column name to scalar. Row order is whatever the
// procedure produced; nothing here re-sorts.
type Row map[string]any

// Call describes one stored procedure invocation. Args are positional in the
// procedure's declaration order. OutParams names session variables the
// procedure fills; when present, the gateway appends @-markers to the CALL
// and retrieves the values with a follow-up SELECT.
type Call struct {
	Name      string
	Args      []any
	OutParams []string
}

// Result is the normalized outcome of a Call. Error set means the database
// raised an exception (procedure error); Success=false with an empty Error
// means the procedure itself rejected the operation (business rejection).
type Result struct {
	Success bool           `json:"success"`
	Data    []Row          `json:"data"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	Out     map[string]any `json:"-"`
}

func failure(err error) Result {
	return Result{Success: false, Data: []Row{}, Error: err.Error()}
}

// Invoke executes the procedure and normalizes its outcome. Database errors
// never escape: every failure comes back inside the Result.
//
// If actor context is required it must have been set on this session before
// the call; Invoke does not set it.
func (s *Session) Invoke(ctx context.Context, call Call) Result {
	tracer := otel.Tracer("emr-api/session")
	ctx, span := tracer.Start(ctx, "CALL "+call.Name)
	defer span.End()

	start := time.Now()
	res := s.invoke(ctx, call)
	if s.metrics != nil {
		outcome := "ok"
		if res.Error != "" {
			outcome = "error"
		}
		s.metrics.ProcedureCallsTotal.WithLabelValues(call.Name, outcome).Inc()
		s.metrics.ProcedureCallDuration.WithLabelValues(call.Name).Observe(time.Since(start).Seconds())
	}
	return res
}

func (s *Session) invoke(ctx context.Context, call Call) Result {
	if s.state != stateBound {
		return failure(ErrNotBound)
	}

	query := buildCall(call)

	if len(call.OutParams) > 0 {
		if _, err := s.conn.ExecContext(ctx, query, call.Args...); err != nil {
			return failure(err)
		}
		return s.collectOutParams(ctx, call.OutParams)
	}

	rows, err := s.conn.QueryContext(ctx, query, call.Args...)
	if err != nil {
		return failure(err)
	}
	// Only the first result set is authoritative; Close discards the rest
	// (MySQL CALLs trail an empty OK set).
	defer rows.Close()

	data, err := ScanRows(rows)
	if err != nil {
		return failure(err)
	}

	return Result{Success: true, Data: data}
}

// collectOutParams reads the session variables a procedure filled and folds
// them into a Result, classifying success from the procedure's own message.
func (s *Session) collectOutParams(ctx context.Context, names []string) Result {
	cols := make([]string, len(names))
	for i, n := range names {
		cols[i] = "@" + n + " AS " + n
	}

	rows, err := s.conn.QueryContext(ctx, "SELECT "+strings.Join(cols, ", "))
	if err != nil {
		return failure(err)
	}
	defer rows.Close()

	data, err := ScanRows(rows)
	if err != nil {
		return failure(err)
	}
	if len(data) == 0 {
		return Result{Success: false, Data: []Row{}, Message: "no output returned"}
	}

	out := map[string]any(data[0])
	message, _ := out["result"].(string)
	success := classifyOutcome(message)

	res := Result{Success: success, Message: message, Out: out, Data: []Row{}}
	if success {
		// Surface the procedure's text under "message", not the raw
		// @result variable name.
		row := make(Row, len(out))
		for k, v := range out {
			if k == "result" {
				continue
			}
			row[k] = v
		}
		row["message"] = message
		res.Data = []Row{row}
	}
	return res
}

// classifyOutcome is the single place the message-driven success test lives.
// The procedure layer reports outcomes as human-readable text, and success is
// a substring match on its affirmative marker. Fragile, but it is the wire
// contract; swap the body for a structured status check when the procedures
// grow one.
func classifyOutcome(message string) bool {
	return strings.Contains(message, "successfully")
}

// buildCall renders "CALL name(?, ?, @out1, @out2)" with one placeholder per
// positional argument and a marker per OUT parameter.
func buildCall(call Call) string {
	parts := make([]string, 0, len(call.Args)+len(call.OutParams))
	for range call.Args {
		parts = append(parts, "?")
	}
	for _, n := range call.OutParams {
		parts = append(parts, "@"+n)
	}
	return "CALL " + call.Name + "(" + strings.Join(parts, ", ") + ")"
}

// ScanRows converts a result set into ordered column→value maps. Driver
// []byte values become strings so the rows marshal cleanly.
func ScanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0, 8)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
