// Package album implements the album lifecycle: ownership-checked CRUD and
// the cascading transactional delete.
package album

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/snapvault/backend/internal/apperror"
	"github.com/snapvault/backend/internal/models"
	"github.com/snapvault/backend/internal/store"
)

// Store defines the album persistence operations the service needs.
type Store interface {
	InsertAlbum(ctx context.Context, album *models.Album) (*models.Album, error)
	AlbumByID(ctx context.Context, id string) (*models.Album, error)
	ListAlbumsVisibleTo(ctx context.Context, userID string) ([]models.Album, error)
	ListAlbumsByOwner(ctx context.Context, userID string) ([]models.Album, error)
	UpdateAlbum(ctx context.Context, album *models.Album) error
	DeleteAlbumCascade(ctx context.Context, albumID primitive.ObjectID) ([]models.MediaItem, error)
	ListMediaByAlbum(ctx context.Context, albumID primitive.ObjectID) ([]models.MediaItem, error)
}

// Service applies the album authorization rules on top of the store.
type Service struct {
	albums Store
}

func NewService(albums Store) *Service {
	return &Service{albums: albums}
}

// Create makes a new album owned by the user.
func (s *Service) Create(ctx context.Context, owner *models.User, req *models.CreateAlbumRequest) (*models.Album, error) {
	album := &models.Album{
		Name:          req.Name,
		Description:   req.Description,
		OwnerID:       owner.ID,
		CoverImageURL: req.CoverImageURL,
		IsPublic:      req.IsPublic,
	}
	return s.albums.InsertAlbum(ctx, album)
}

// List returns the user's own albums plus all public albums.
func (s *Service) List(ctx context.Context, requester *models.User) ([]models.Album, error) {
	albums, err := s.albums.ListAlbumsVisibleTo(ctx, requester.ID)
	if err != nil {
		return nil, err
	}
	if albums == nil {
		albums = []models.Album{}
	}
	return albums, nil
}

// ListMine returns only the user's own albums.
func (s *Service) ListMine(ctx context.Context, requester *models.User) ([]models.Album, error) {
	albums, err := s.albums.ListAlbumsByOwner(ctx, requester.ID)
	if err != nil {
		return nil, err
	}
	if albums == nil {
		albums = []models.Album{}
	}
	return albums, nil
}

// Get returns the album if the requester may read it: public albums are
// readable by anyone authenticated, private ones only by their owner.
func (s *Service) Get(ctx context.Context, requester *models.User, id string) (*models.Album, error) {
	album, err := s.albums.AlbumByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !album.IsPublic && album.OwnerID != requester.ID {
		return nil, apperror.New(apperror.Forbidden, "You do not have permission to access this album")
	}
	return album, nil
}

// Update applies the patch. Only the owner may modify an album.
func (s *Service) Update(ctx context.Context, requester *models.User, id string, req *models.UpdateAlbumRequest) (*models.Album, error) {
	album, err := s.albums.AlbumByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if album.OwnerID != requester.ID {
		return nil, apperror.New(apperror.Forbidden, "You do not have permission to modify this album")
	}

	if req.Name != nil {
		album.Name = *req.Name
	}
	if req.Description != nil {
		album.Description = *req.Description
	}
	if req.IsPublic != nil {
		album.IsPublic = *req.IsPublic
	}
	if req.CoverImageURL != nil {
		album.CoverImageURL = *req.CoverImageURL
	}

	if err := s.albums.UpdateAlbum(ctx, album); err != nil {
		return nil, notFoundOr(err)
	}
	return album, nil
}

// Delete removes the album and all its media items in one transaction.
// External storage assets of the contained items are left in place; the
// skipped keys are logged so an operator can reconcile them.
func (s *Service) Delete(ctx context.Context, requester *models.User, id string) error {
	album, err := s.albums.AlbumByID(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	if album.OwnerID != requester.ID {
		return apperror.New(apperror.Forbidden, "You do not have permission to delete this album")
	}

	removed, err := s.albums.DeleteAlbumCascade(ctx, album.ID)
	if err != nil {
		return notFoundOr(err)
	}
	for _, item := range removed {
		log.Printf("warn: album %s deleted, storage asset %q not cleaned up", id, item.StorageKey)
	}
	return nil
}

// ListMedia returns the album's media items, subject to the album read rule.
func (s *Service) ListMedia(ctx context.Context, requester *models.User, albumID string) ([]models.MediaItem, error) {
	album, err := s.Get(ctx, requester, albumID)
	if err != nil {
		return nil, err
	}
	items, err := s.albums.ListMediaByAlbum(ctx, album.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.MediaItem{}
	}
	return items, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, store.ErrAlbumNotFound) {
		return apperror.New(apperror.NotFound, "Album not found")
	}
	return err
}
