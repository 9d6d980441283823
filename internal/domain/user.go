package domain

// Profile is the display part of a user owned by the identity service.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
}

func (p Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// User is a read-only view of an identity. Handle is unique.
type User struct {
	ID      string
	Handle  string
	Profile Profile
}

// Caller is the authenticated subject of a request.
type Caller struct {
	ID      string
	Handle  string
	Profile Profile
}

func (c Caller) IsZero() bool {
	return c.ID == ""
}
