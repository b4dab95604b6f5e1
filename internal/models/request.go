package models

// RequestForm is the draft a user fills in before submitting a request.
type RequestForm struct {
	Image        string `json:"image"`
	ItemName     string `json:"item_name"`
	Weight       string `json:"weight"`
	Amount       string `json:"amount"`
	Note         string `json:"note"`
	FromLocation string `json:"from_location,omitempty"`
	ToLocation   string `json:"to_location,omitempty"`
	Deadline     string `json:"deadline,omitempty"`
}

// NewRequest is the body posted to the backend to create a request.
type NewRequest struct {
	Title        string      `json:"title"`
	FromLocation string      `json:"from_location"`
	ToLocation   string      `json:"to_location"`
	Deadline     string      `json:"deadline"`
	Budget       int         `json:"budget"`
	Description  string      `json:"description"`
	Image        string      `json:"image"`
	OfferID      interface{} `json:"offer_id,omitempty"`
	Source       string      `json:"source"`
}

// Bookmark marks a listing the user wants to come back to.
type Bookmark struct {
	ID         int    `json:"id"`
	UserKey    string `json:"-"`
	Collection Tab    `json:"collection"`
	ListingID  string `json:"listing_id"`
}
