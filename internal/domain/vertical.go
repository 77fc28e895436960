package domain

// Vertical is a top-level IoT domain (e.g. Water Quality), mirrored on the
// remote resource tree as an application entity named "AE-"+ShortCode.
type Vertical struct {
	ID          int      `db:"id"`
	Name        string   `db:"res_name"`       // human name, unique
	ShortCode   string   `db:"res_short_name"` // derived code, unique
	Description string   `db:"description"`
	Labels      []string `db:"labels"`
	ORID        string   `db:"orid"` // remote AE resource id, set after remote creation
}

// RemotePath is the path segment of the vertical's AE on the resource tree.
func (v *Vertical) RemotePath() string {
	return "AE-" + v.ShortCode
}

func (v *Vertical) ToJSON() map[string]any {
	return map[string]any{
		"id":          v.ID,
		"name":        v.Name,
		"short_code":  v.ShortCode,
		"description": v.Description,
		"labels":      v.Labels,
		"orid":        v.ORID,
	}
}
