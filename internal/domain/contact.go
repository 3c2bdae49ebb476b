package domain

import "time"

type ContactMessage struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	ProjectID *int64    `json:"projectID"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewsletterSubscriber struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	UnsubscribeToken string    `json:"-"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}
