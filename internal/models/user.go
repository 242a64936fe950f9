package models

// User captures the storefront-facing fields of an authenticated identity.
type User struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone"`
}

// Address is an optional shipping address collected at registration.
type Address struct {
	Street     string `json:"street,omitempty" yaml:"street"`
	City       string `json:"city,omitempty" yaml:"city"`
	State      string `json:"state,omitempty" yaml:"state"`
	Country    string `json:"country,omitempty" yaml:"country"`
	PostalCode string `json:"postalCode,omitempty" yaml:"postal_code"`
}

// IsZero reports whether no address field has been filled in.
func (a Address) IsZero() bool {
	return a == Address{}
}

// NotificationToggles switches individual notification categories on or off.
type NotificationToggles struct {
	Orders      bool `json:"orders" yaml:"orders"`
	Promotions  bool `json:"promotions" yaml:"promotions"`
	NewArrivals bool `json:"newArrivals" yaml:"new_arrivals"`
}

// Preferences are the optional locale and notification settings collected at registration.
type Preferences struct {
	Language string              `json:"language,omitempty" yaml:"language"`
	Currency string              `json:"currency,omitempty" yaml:"currency"`
	Email    NotificationToggles `json:"emailNotifications" yaml:"email"`
	SMS      NotificationToggles `json:"smsNotifications" yaml:"sms"`
}

// IsZero reports whether the preferences carry nothing worth sending.
func (p Preferences) IsZero() bool {
	return p == Preferences{}
}
