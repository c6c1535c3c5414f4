package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	Name         string             `json:"name" bson:"name"`
	FarmName     string             `json:"farm_name" bson:"farm_name"`
	Location     string             `json:"location" bson:"location"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// PublicProfile strips credential material for login responses.
type PublicProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	FarmName string `json:"farm_name"`
	Location string `json:"location"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Name:     u.Name,
		FarmName: u.FarmName,
		Location: u.Location,
	}
}
