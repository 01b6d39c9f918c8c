package models

// UserSuggestion is one autocomplete candidate.
type UserSuggestion struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DirectoryUser is a resolved site user identity.
type DirectoryUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Email struct {
	To      []string
	Subject string
	Body    string
}
