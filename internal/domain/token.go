package domain

import (
	"database/sql"
	"time"
)

// Token is a provisioning token, composite-keyed by (sensor type, token id).
// Token ids are per-sensor-type monotonically increasing integers. Status
// false means issued, true means deployed; NodeID is set on deployment and a
// node carries at most one deployed token.
type Token struct {
	SensorTypeID int           `db:"sensor_type"`
	TokenID      int           `db:"token_id"`
	AssignedTo   int           `db:"assigned_to"`
	Status       bool          `db:"status"`
	IssueTime    time.Time     `db:"issue_time"`
	NodeID       sql.NullInt64 `db:"node_id"`
}

func (t *Token) ToJSON() map[string]any {
	out := map[string]any{
		"sensor_type": t.SensorTypeID,
		"token_id":    t.TokenID,
		"assigned_to": t.AssignedTo,
		"status":      t.Status,
		"issue_time":  t.IssueTime,
	}
	if t.NodeID.Valid {
		out["node_id"] = int(t.NodeID.Int64)
	}
	return out
}
