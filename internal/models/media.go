package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media types as derived from the upload's MIME prefix.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// MediaItem is one uploaded image or video stored in MongoDB. The binary
// asset itself lives in object storage under StorageKey; URL is the
// browser-accessible location.
type MediaItem struct {
	ID           primitive.ObjectID `json:"id"           bson:"_id,omitempty"`
	Type         string             `json:"type"         bson:"type"`
	StorageKey   string             `json:"storageKey"   bson:"storage_key"`
	URL          string             `json:"url"          bson:"url"`
	ThumbnailKey string             `json:"-"            bson:"thumbnail_key,omitempty"`
	ThumbnailURL string             `json:"thumbnailUrl,omitempty" bson:"thumbnail_url,omitempty"`
	Title        string             `json:"title,omitempty"        bson:"title,omitempty"`
	Description  string             `json:"description,omitempty"  bson:"description,omitempty"`
	Width        int                `json:"width,omitempty"        bson:"width,omitempty"`
	Height       int                `json:"height,omitempty"       bson:"height,omitempty"`
	Duration     *float64           `json:"duration,omitempty"     bson:"duration,omitempty"`
	Size         int64              `json:"size"         bson:"size"`
	ContentType  string             `json:"contentType"  bson:"content_type"`
	AlbumID      primitive.ObjectID `json:"album"        bson:"album_id"`
	UploaderID   string             `json:"uploadedBy"   bson:"uploader_id"`
	CreatedAt    time.Time          `json:"createdAt"    bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt"    bson:"updated_at"`
}

// UpdateMediaRequest is the JSON body for PATCH /api/v1/media/{id}.
// Nil fields are left unchanged.
type UpdateMediaRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
