package domain

// NodeOwner assigns exactly one vendor user to a node. APIKeyHash is the
// SHA-256 hex of the vendor's ingestion key; the plaintext key is returned
// once at assignment time and never stored.
type NodeOwner struct {
	ID         int    `db:"id"`
	NodeID     int    `db:"node_id"` // unique, at most one owner per node
	VendorID   int    `db:"vendor_id"`
	APIKeyHash string `db:"api_key_hash"`
}

func (o *NodeOwner) ToJSON() map[string]any {
	return map[string]any{
		"id":        o.ID,
		"node_id":   o.NodeID,
		"vendor_id": o.VendorID,
	}
}
