package model

// GeoPoint is a WGS84 coordinate pair
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location describes where a facility sits. Coordinates are optional:
// extraction output frequently lacks them, and a missing coordinate must
// propagate as "distance unknown" rather than (0,0).
type Location struct {
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
	Region string   `json:"region,omitempty"`
}

// Point returns the coordinate pair and whether both halves are present.
func (l Location) Point() (GeoPoint, bool) {
	if l.Lat == nil || l.Lon == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: *l.Lat, Lon: *l.Lon}, true
}

// BoundingBox is an inclusive lat/lon rectangle used for region filtering
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// SupplyEntry is one extracted capability/equipment/specialist mention on a
// facility record, as produced by the upstream extraction step.
type SupplyEntry struct {
	Name           string       `json:"name"`
	CapabilityCode string       `json:"capability_code,omitempty"` // canonical code if already resolved
	Negated        bool         `json:"negated,omitempty"`
	Confidence     float64      `json:"confidence,omitempty"`
	CitationIDs    []string     `json:"citation_ids,omitempty"`
	Evidence       *RowEvidence `json:"evidence,omitempty"`
}

// RowEvidence locates a supply entry inside a source table
type RowEvidence struct {
	SourceRowID      string `json:"source_row_id,omitempty"`
	SourceColumnName string `json:"source_column_name,omitempty"`
	Snippet          string `json:"snippet,omitempty"`
}

// SupplyRecord is one facility as reported by extraction, before any
// trust decision has been made about its claims.
type SupplyRecord struct {
	FacilityID  string        `json:"facility_id"`
	Name        string        `json:"name,omitempty"`
	Location    Location      `json:"location"`
	Capabilities []SupplyEntry `json:"capabilities,omitempty"`
	Equipment   []SupplyEntry `json:"equipment,omitempty"`
	Specialists []SupplyEntry `json:"specialists,omitempty"`

	// Attributes holds loosely-typed scalar fields (bed counts, staff
	// counts) surfaced to schema and range checks.
	Attributes map[string]any `json:"attributes,omitempty"`

	// FieldConfidence carries per-field extraction confidence where the
	// extractor reported one.
	FieldConfidence map[string]float64 `json:"field_confidence,omitempty"`
}

// Entries returns capabilities, equipment and specialists as one list.
func (r SupplyRecord) Entries() []SupplyEntry {
	out := make([]SupplyEntry, 0, len(r.Capabilities)+len(r.Equipment)+len(r.Specialists))
	out = append(out, r.Capabilities...)
	out = append(out, r.Equipment...)
	out = append(out, r.Specialists...)
	return out
}
