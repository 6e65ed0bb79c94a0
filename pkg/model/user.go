package model

import "time"

type User struct {
	ID        string    `json:"id" bson:"_id" validate:"required,owner_id"`
	Name      string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email,max=254"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type UserUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}
