package models

import (
	"encoding/json"
	"slices"
)

// ========================= Domain Models =========================
// Shapes shared by the room server, the HTTP client and the local cache.
// JSON field names follow the browser client so both can share a room.

// Category marks the resources that take part in special rules.
type Category int

const (
	CategoryNone Category = iota
	CategoryCurrency
	CategoryEnergy
	CategoryHeat
)

func (c Category) String() string {
	switch c {
	case CategoryCurrency:
		return "currency"
	case CategoryEnergy:
		return "energy"
	case CategoryHeat:
		return "heat"
	default:
		return "none"
	}
}

type Resource struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Amount     int      `json:"amount"`
	Production int      `json:"production"`
	Category   Category `json:"-"`
}

// resourceWire is the on-the-wire form: one boolean flag per category.
type resourceWire struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Amount       int    `json:"amount"`
	Production   int    `json:"production"`
	IsMegaCredit bool   `json:"isMegaCredit,omitempty"`
	IsEnergy     bool   `json:"isEnergy,omitempty"`
	IsHeat       bool   `json:"isHeat,omitempty"`
}

func (r Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(resourceWire{
		ID:           r.ID,
		Name:         r.Name,
		Amount:       r.Amount,
		Production:   r.Production,
		IsMegaCredit: r.Category == CategoryCurrency,
		IsEnergy:     r.Category == CategoryEnergy,
		IsHeat:       r.Category == CategoryHeat,
	})
}

func (r *Resource) UnmarshalJSON(b []byte) error {
	var w resourceWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Resource{ID: w.ID, Name: w.Name, Amount: w.Amount, Production: w.Production}
	switch {
	case w.IsMegaCredit:
		r.Category = CategoryCurrency
	case w.IsEnergy:
		r.Category = CategoryEnergy
	case w.IsHeat:
		r.Category = CategoryHeat
	}
	return nil
}

type Player struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	TR        int        `json:"tr"`
	Resources []Resource `json:"resources"`
}

// Clone returns a copy that shares no slices with p.
func (p Player) Clone() Player {
	p.Resources = slices.Clone(p.Resources)
	return p
}

// Equal reports structural equality, resource order included.
func (p Player) Equal(o Player) bool {
	return p.ID == o.ID && p.Name == o.Name && p.TR == o.TR && slices.Equal(p.Resources, o.Resources)
}

// ResourceIndex returns the index of the resource with the given id, or -1.
func (p Player) ResourceIndex(id string) int {
	return slices.IndexFunc(p.Resources, func(r Resource) bool { return r.ID == id })
}

// ByCategory returns the index of the first resource in category c, or -1.
func (p Player) ByCategory(c Category) int {
	return slices.IndexFunc(p.Resources, func(r Resource) bool { return r.Category == c })
}

// Roster is an ordered player list; it is what a room stores and what a
// history frame snapshots.
type Roster []Player

// Clone deep-copies the roster. A nil roster clones to an empty one so the
// JSON form is always an array.
func (r Roster) Clone() Roster {
	out := make(Roster, len(r))
	for i, p := range r {
		out[i] = p.Clone()
	}
	return out
}

func (r Roster) Equal(o Roster) bool {
	return slices.EqualFunc(r, o, func(a, b Player) bool { return a.Equal(b) })
}

func (r Roster) Index(id string) int {
	return slices.IndexFunc(r, func(p Player) bool { return p.ID == id })
}

func (r Roster) Contains(id string) bool { return id != "" && r.Index(id) >= 0 }

// Find returns the player with the given id.
func (r Roster) Find(id string) (Player, bool) {
	if i := r.Index(id); i >= 0 {
		return r[i], true
	}
	return Player{}, false
}

// Room is the unit the room server stores and the wire shape of a POST body.
type Room struct {
	RoomID  string `json:"roomId"`
	Players Roster `json:"players"`
}

// DefaultRoomID is used when a request omits the room id.
const DefaultRoomID = "default"
