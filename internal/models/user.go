package models

import "time"

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserPatch carries a partial user update; nil fields are left unchanged.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"requester_id"`
	CreatedAt   time.Time `json:"created"`
}

// ItemRequestView is a request together with the items created in answer to it.
type ItemRequestView struct {
	ItemRequest
	Items []*Item `json:"items"`
}
