package models

import "time"

type Todo struct {
	ID             int64      `json:"id"`
	Text           string     `json:"text"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedBy      int64      `json:"created_by"`
	CreatedByName  string     `json:"created_by_name"`
	AssignedTo     *int64     `json:"assigned_to,omitempty"`
	AssignedToName *string    `json:"assigned_to_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
