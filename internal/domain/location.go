package domain

type ID = string

type LocationKind string

const (
	KindNeighborhood LocationKind = "neighborhood"
	KindArea         LocationKind = "area"
	KindCity         LocationKind = "city"
	KindNone         LocationKind = "none"
)

// City is a "Beyond ATL" city. It has no area/neighborhood children that the
// city page cares about.
type City struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Area struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	CityID ID     `json:"city_id,omitempty"`
}

// Neighborhood belongs to at most one Area. An empty AreaID means the
// neighborhood is not attached to an area.
type Neighborhood struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	AreaID ID     `json:"area_id,omitempty"`
}

func (n Neighborhood) HasArea() bool { return n.AreaID != "" }
