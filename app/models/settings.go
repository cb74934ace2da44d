package models

import "github.com/google/uuid"

// Validate checks the settings before they are saved.
func (s *SiteSettings) Validate() error {
	return validate.Struct(s)
}

// Validate checks the friend link before it is saved.
func (l *FriendLink) Validate() error {
	return validate.Struct(l)
}

// BeforeCreate assigns an id to a new friend link.
func (l *FriendLink) BeforeCreate() {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
}
