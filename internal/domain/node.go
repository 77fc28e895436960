package domain

import "database/sql"

// Node is one physical sensor instance. It shadows a remote container
// resource with Data and Descriptor children; NodeName is the generated
// resource code and is globally unique, as is the user-chosen Name.
type Node struct {
	ID               int            `db:"id"`
	SensorTypeID     int            `db:"sensor_type_id"`
	SensorNodeNumber int            `db:"sensor_node_number"` // per-sensor-type ordinal, max+1 at creation
	Name             string         `db:"name"`               // user-supplied display name, unique
	NodeName         string         `db:"node_name"`          // generated resource code, unique
	Labels           []string       `db:"labels"`
	Lat              float64        `db:"lat"`
	Long             float64        `db:"long"`
	Location         string         `db:"location"`
	Area             string         `db:"area"`
	ORID             string         `db:"orid"`           // remote container resource id
	NodeDataORID     string         `db:"node_data_orid"` // remote Data child resource id
	TokenNum         sql.NullInt64  `db:"token_num"`      // back-filled to the node's own id, immutable once set
}

func (n *Node) ToJSON() map[string]any {
	m := map[string]any{
		"id":                 n.ID,
		"sensor_type_id":     n.SensorTypeID,
		"sensor_node_number": n.SensorNodeNumber,
		"name":               n.Name,
		"node_name":          n.NodeName,
		"labels":             n.Labels,
		"lat":                n.Lat,
		"long":               n.Long,
		"location":           n.Location,
		"area":               n.Area,
		"orid":               n.ORID,
		"node_data_orid":     n.NodeDataORID,
	}
	if n.TokenNum.Valid {
		m["token_num"] = n.TokenNum.Int64
	} else {
		m["token_num"] = nil
	}
	return m
}
