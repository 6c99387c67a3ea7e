package models

import "time"

// AdminUser can sign in to the admin API.
type AdminUser struct {
	ID           string    `gorm:"primaryKey;size:64"            bson:"_id"           json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" bson:"email"         json:"email"`
	PasswordHash string    `gorm:"size:255;not null"             bson:"password_hash" json:"-"`
	Role         string    `gorm:"size:50;default:admin"         bson:"role"          json:"role"`
	CreatedAt    time.Time `                                     bson:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `                                     bson:"updated_at"    json:"updated_at"`
}

func (u *AdminUser) DocID() string           { return u.ID }
func (u *AdminUser) SetDocID(id string)      { u.ID = id }
func (u *AdminUser) Created() time.Time      { return u.CreatedAt }
func (u *AdminUser) SetCreated(at time.Time) { u.CreatedAt = at }
func (u *AdminUser) Stamp(now time.Time)     { stamp(&u.CreatedAt, &u.UpdatedAt, now) }
