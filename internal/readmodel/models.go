// Package readmodel holds the normalized shapes served to clients.
package readmodel

import "github.com/shopspring/decimal"

// Price is an exact amount that encodes as a bare JSON number, the way the
// remote catalog sends it. Decoding accepts numbers and quoted strings.
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price { return Price{Decimal: d} }

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// CatalogItem is the normalized, display-ready product.
type CatalogItem struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	ImageBase64 string          `json:"imageBase64,omitempty"`
	Category    string          `json:"category"`
	Price       Price           `json:"price"`
	Rating      float64         `json:"rating"`
}

// Page is one flipbook page: a front item and an optional back item.
type Page struct {
	ID      int          `json:"id"`
	Front   CatalogItem  `json:"front"`
	Back    *CatalogItem `json:"back,omitempty"`
	Flipped bool         `json:"flipped"`
}

// Profile is the user profile attached to an authenticated session.
type Profile struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Name     UserName `json:"name"`
	Phone    string   `json:"phone"`
	Address  Address  `json:"address"`
}

type UserName struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Address is the postal address of a profile.
type Address struct {
	City        string      `json:"city"`
	Street      string      `json:"street"`
	Number      int         `json:"number"`
	Zipcode     string      `json:"zipcode"`
	Geolocation Geolocation `json:"geolocation"`
}

type Geolocation struct {
	Lat  string `json:"lat"`
	Long string `json:"long"`
}

// SessionView is the client-facing view of the session state.
type SessionView struct {
	Authenticated bool     `json:"authenticated"`
	Mode          string   `json:"mode,omitempty"`
	Token         string   `json:"token,omitempty"`
	User          *Profile `json:"user,omitempty"`
}

// FlipbookView is the client-facing view of the flipbook.
type FlipbookView struct {
	Index   int   `json:"index"`
	Total   int   `json:"total"`
	Current *Page `json:"current,omitempty"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrevious"`
}
