package domain

// Order links a ticket batch to its customer. Read-only here; the
// entity store owns it.
type Order struct {
	ID       EntityID `json:"id"`
	Customer EntityID `json:"customer"`
}

// Customer carries the contact details resolved onto enriched tickets.
type Customer struct {
	ID    EntityID `json:"id"`
	Email string   `json:"email"`
}
