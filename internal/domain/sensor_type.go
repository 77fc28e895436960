package domain

// SensorType is the parameter schema for a class of sensor, scoped to one
// vertical. Parameters and DataTypes are positionally paired and must have
// equal length.
type SensorType struct {
	ID         int      `db:"id"`
	Name       string   `db:"res_name"` // unique per vertical
	Parameters []string `db:"parameters"`
	DataTypes  []string `db:"data_types"`
	Labels     []string `db:"labels"`
	VerticalID int      `db:"vertical_id"`
}

func (s *SensorType) ToJSON() map[string]any {
	return map[string]any{
		"id":          s.ID,
		"name":        s.Name,
		"parameters":  s.Parameters,
		"data_types":  s.DataTypes,
		"labels":      s.Labels,
		"vertical_id": s.VerticalID,
	}
}
