package model

// Client is a customer logo shown on the landing page.
type Client struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Logo      string `json:"logo"`
	Orders    int    `json:"orders"`
	IsActive  bool   `json:"is_active"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ClientInput is the payload for client writes.
type ClientInput struct {
	Name     string `json:"name"`
	Logo     string `json:"logo"`
	Orders   int    `json:"orders"`
	IsActive bool   `json:"is_active"`
}

// Benefit is a landing-page benefit with its FAQ entry.
type Benefit struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Logo     string `json:"logo"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Orders   int    `json:"orders"`
	IsActive bool   `json:"is_active"`
}

// BenefitInput is the payload for benefit writes.
type BenefitInput struct {
	Name     string `json:"name"`
	Logo     string `json:"logo"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Orders   int    `json:"orders"`
	IsActive bool   `json:"is_active"`
}
