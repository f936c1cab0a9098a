package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Album is a named, owned collection of media items stored in MongoDB.
// OwnerID is immutable after creation. A non-public album is visible only
// to its owner; a public album is readable by any authenticated user.
type Album struct {
	ID            primitive.ObjectID   `json:"id"            bson:"_id,omitempty"`
	Name          string               `json:"name"          bson:"name"`
	Description   string               `json:"description,omitempty"   bson:"description,omitempty"`
	OwnerID       string               `json:"owner"         bson:"owner_id"`
	CoverImageURL string               `json:"coverImageUrl,omitempty" bson:"cover_image_url,omitempty"`
	MediaItems    []primitive.ObjectID `json:"mediaItems"    bson:"media_items"`
	IsPublic      bool                 `json:"isPublic"      bson:"is_public"`
	CreatedAt     time.Time            `json:"createdAt"     bson:"created_at"`
	UpdatedAt     time.Time            `json:"updatedAt"     bson:"updated_at"`
}

// CreateAlbumRequest is the JSON body for POST /api/v1/albums.
type CreateAlbumRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	IsPublic      bool   `json:"isPublic"`
	CoverImageURL string `json:"coverImageUrl"`
}

// UpdateAlbumRequest is the JSON body for PATCH /api/v1/albums/{id}.
// Nil fields are left unchanged.
type UpdateAlbumRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	IsPublic      *bool   `json:"isPublic"`
	CoverImageURL *string `json:"coverImageUrl"`
}
