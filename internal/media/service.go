// Package media implements the media item lifecycle: the upload pipeline
// into object storage, permission-checked CRUD, and the two-phase delete
// (database transaction, then best-effort asset cleanup).
package media

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/snapvault/backend/internal/apperror"
	"github.com/snapvault/backend/internal/models"
	"github.com/snapvault/backend/internal/store"
)

// Store defines the persistence operations the service needs.
type Store interface {
	AlbumByID(ctx context.Context, id string) (*models.Album, error)
	InsertMedia(ctx context.Context, item *models.MediaItem) (*models.MediaItem, error)
	MediaByID(ctx context.Context, id string) (*models.MediaItem, error)
	UpdateMedia(ctx context.Context, item *models.MediaItem) error
	AppendMediaToAlbum(ctx context.Context, albumID, mediaID primitive.ObjectID) error
	DeleteMediaAndUnlink(ctx context.Context, mediaID, albumID primitive.ObjectID) error
}

// ObjectStorage is the external store holding the binary assets.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// UploadInput is one validated file ready for the upload pipeline.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
	Title       string
	Description string
}

// Service coordinates object storage and the document store.
type Service struct {
	store   Store
	storage ObjectStorage
}

func NewService(st Store, storage ObjectStorage) *Service {
	return &Service{store: st, storage: storage}
}

// Upload runs the single-file pipeline: authorize against the album, push
// the asset to object storage, persist the media item, and link it into
// the album's item list.
func (s *Service) Upload(ctx context.Context, uploader *models.User, albumID string, in UploadInput) (*models.MediaItem, error) {
	album, err := s.authorizeUpload(ctx, uploader, albumID)
	if err != nil {
		return nil, err
	}
	return s.uploadOne(ctx, uploader, album, in)
}

// UploadMany processes the files strictly sequentially through the same
// pipeline. There is no per-file rollback: a failure aborts the remainder
// but items already created stay persisted.
func (s *Service) UploadMany(ctx context.Context, uploader *models.User, albumID string, files []UploadInput) ([]models.MediaItem, error) {
	album, err := s.authorizeUpload(ctx, uploader, albumID)
	if err != nil {
		return nil, err
	}

	items := make([]models.MediaItem, 0, len(files))
	for _, in := range files {
		item, err := s.uploadOne(ctx, uploader, album, in)
		if err != nil {
			return items, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// Get returns the media item if the requester may read its containing album.
func (s *Service) Get(ctx context.Context, requester *models.User, id string) (*models.MediaItem, error) {
	item, err := s.mediaByID(ctx, id)
	if err != nil {
		return nil, err
	}
	album, err := s.store.AlbumByID(ctx, item.AlbumID.Hex())
	if err != nil {
		return nil, albumNotFoundOr(err)
	}
	if !album.IsPublic && requester.ID != album.OwnerID && requester.ID != item.UploaderID {
		return nil, apperror.New(apperror.Forbidden, "You do not have permission to access this media item")
	}
	return item, nil
}

// Update applies the patch. Only the uploader may modify a media item.
func (s *Service) Update(ctx context.Context, requester *models.User, id string, req *models.UpdateMediaRequest) (*models.MediaItem, error) {
	item, err := s.mediaByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UploaderID != requester.ID {
		return nil, apperror.New(apperror.Forbidden, "You can only update your own media items")
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}

	if err := s.store.UpdateMedia(ctx, item); err != nil {
		if errors.Is(err, store.ErrMediaNotFound) {
			return nil, apperror.New(apperror.NotFound, "Media item not found")
		}
		return nil, err
	}
	return item, nil
}

// Delete removes the media item. The document delete and the album unlink
// commit in one transaction; only then is the external asset removed,
// best-effort. A failed cleanup leaves an orphaned remote asset and is
// logged, not surfaced.
func (s *Service) Delete(ctx context.Context, requester *models.User, id string) error {
	item, err := s.mediaByID(ctx, id)
	if err != nil {
		return err
	}
	album, err := s.store.AlbumByID(ctx, item.AlbumID.Hex())
	if err != nil {
		return albumNotFoundOr(err)
	}
	if requester.ID != item.UploaderID && requester.ID != album.OwnerID {
		return apperror.New(apperror.Forbidden, "You do not have permission to delete this media item")
	}

	if err := s.store.DeleteMediaAndUnlink(ctx, item.ID, album.ID); err != nil {
		if errors.Is(err, store.ErrMediaNotFound) {
			return apperror.New(apperror.NotFound, "Media item not found")
		}
		return err
	}

	if err := s.storage.Remove(ctx, item.StorageKey); err != nil {
		log.Printf("warn: storage cleanup failed for %q: %v", item.StorageKey, err)
	}
	if item.ThumbnailKey != "" {
		if err := s.storage.Remove(ctx, item.ThumbnailKey); err != nil {
			log.Printf("warn: storage cleanup failed for %q: %v", item.ThumbnailKey, err)
		}
	}
	return nil
}

func (s *Service) authorizeUpload(ctx context.Context, uploader *models.User, albumID string) (*models.Album, error) {
	album, err := s.store.AlbumByID(ctx, albumID)
	if err != nil {
		return nil, albumNotFoundOr(err)
	}
	if album.OwnerID != uploader.ID {
		return nil, apperror.New(apperror.Forbidden, "You can only upload media to your own albums")
	}
	return album, nil
}

func (s *Service) uploadOne(ctx context.Context, uploader *models.User, album *models.Album, in UploadInput) (*models.MediaItem, error) {
	mediaType := models.MediaTypeVideo
	if strings.HasPrefix(in.ContentType, "image/") {
		mediaType = models.MediaTypeImage
	}

	key := "media/" + uuid.New().String() + strings.ToLower(filepath.Ext(in.Filename))
	if err := s.storage.Upload(ctx, key, in.Data, in.ContentType); err != nil {
		return nil, apperror.Wrap(apperror.Upstream, "Failed to upload file to storage", err)
	}

	item := &models.MediaItem{
		Type:        mediaType,
		StorageKey:  key,
		URL:         s.storage.PublicURL(key),
		Title:       in.Title,
		Description: in.Description,
		Size:        int64(len(in.Data)),
		ContentType: in.ContentType,
		AlbumID:     album.ID,
		UploaderID:  uploader.ID,
	}

	if mediaType == models.MediaTypeImage {
		if w, h, err := decodeDimensions(in.Data); err == nil {
			item.Width, item.Height = w, h
		} else {
			log.Printf("warn: dimensions for %q: %v", in.Filename, err)
		}
		if thumb, err := makeThumbnail(in.Data); err == nil {
			thumbKey := "thumbnails/" + strings.TrimPrefix(key, "media/")
			thumbKey = strings.TrimSuffix(thumbKey, filepath.Ext(thumbKey)) + ".jpg"
			if err := s.storage.Upload(ctx, thumbKey, thumb, "image/jpeg"); err == nil {
				item.ThumbnailKey = thumbKey
				item.ThumbnailURL = s.storage.PublicURL(thumbKey)
			} else {
				log.Printf("warn: thumbnail upload for %q: %v", in.Filename, err)
			}
		} else {
			log.Printf("warn: thumbnail for %q: %v", in.Filename, err)
		}
	}

	item, err := s.store.InsertMedia(ctx, item)
	if err != nil {
		return nil, err
	}
	if err := s.store.AppendMediaToAlbum(ctx, album.ID, item.ID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) mediaByID(ctx context.Context, id string) (*models.MediaItem, error) {
	item, err := s.store.MediaByID(ctx, id)
	if errors.Is(err, store.ErrMediaNotFound) {
		return nil, apperror.New(apperror.NotFound, "Media item not found")
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func albumNotFoundOr(err error) error {
	if errors.Is(err, store.ErrAlbumNotFound) {
		return apperror.New(apperror.NotFound, "Album not found")
	}
	return err
}
