package models

// Teacher is a member of staff who can be scheduled.
type Teacher struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
}

// NamedID pairs an id with its display name for batched lookups.
type NamedID struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}
