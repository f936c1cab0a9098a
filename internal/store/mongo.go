package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/snapvault/backend/internal/models"
)

// Sentinel errors for album/media persistence.
var (
	ErrAlbumNotFound = errors.New("album not found")
	ErrMediaNotFound = errors.New("media item not found")
)

// MongoStore handles album and media document CRUD in MongoDB. The two
// delete paths that touch both collections run inside multi-document
// transactions so a failure leaves the prior state intact.
type MongoStore struct {
	db     *mongo.Database
	albums *mongo.Collection
	media  *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:     db,
		albums: db.Collection("albums"),
		media:  db.Collection("media_items"),
	}
}

// ── Albums ──────────────────────────────────────────────────────────

func (s *MongoStore) InsertAlbum(ctx context.Context, album *models.Album) (*models.Album, error) {
	now := time.Now()
	album.CreatedAt = now
	album.UpdatedAt = now
	if album.MediaItems == nil {
		album.MediaItems = []primitive.ObjectID{}
	}
	res, err := s.albums.InsertOne(ctx, album)
	if err != nil {
		return nil, fmt.Errorf("mongo insert album: %w", err)
	}
	album.ID = res.InsertedID.(primitive.ObjectID)
	return album, nil
}

func (s *MongoStore) AlbumByID(ctx context.Context, id string) (*models.Album, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAlbumNotFound
	}
	var album models.Album
	err = s.albums.FindOne(ctx, bson.M{"_id": oid}).Decode(&album)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find album: %w", err)
	}
	return &album, nil
}

// ListAlbumsVisibleTo returns albums owned by the user plus all public albums.
func (s *MongoStore) ListAlbumsVisibleTo(ctx context.Context, userID string) ([]models.Album, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"is_public": true},
	}}
	return s.findAlbums(ctx, filter)
}

// ListAlbumsByOwner returns only the albums owned by the user.
func (s *MongoStore) ListAlbumsByOwner(ctx context.Context, userID string) ([]models.Album, error) {
	return s.findAlbums(ctx, bson.M{"owner_id": userID})
}

func (s *MongoStore) findAlbums(ctx context.Context, filter bson.M) ([]models.Album, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.albums.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find albums: %w", err)
	}
	defer cur.Close(ctx)

	var albums []models.Album
	if err := cur.All(ctx, &albums); err != nil {
		return nil, fmt.Errorf("mongo decode albums: %w", err)
	}
	return albums, nil
}

// UpdateAlbum persists mutable album fields and bumps updated_at.
func (s *MongoStore) UpdateAlbum(ctx context.Context, album *models.Album) error {
	album.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":            album.Name,
		"description":     album.Description,
		"cover_image_url": album.CoverImageURL,
		"is_public":       album.IsPublic,
		"updated_at":      album.UpdatedAt,
	}}
	res, err := s.albums.UpdateOne(ctx, bson.M{"_id": album.ID}, update)
	if err != nil {
		return fmt.Errorf("mongo update album: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// DeleteAlbumCascade removes the album and every media item referencing it
// in one transaction. It returns the removed media items so the caller can
// account for their external assets.
func (s *MongoStore) DeleteAlbumCascade(ctx context.Context, albumID primitive.ObjectID) ([]models.MediaItem, error) {
	sess, err := s.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		cur, err := s.media.Find(sc, bson.M{"album_id": albumID})
		if err != nil {
			return nil, fmt.Errorf("find album media: %w", err)
		}
		var items []models.MediaItem
		if err := cur.All(sc, &items); err != nil {
			return nil, fmt.Errorf("decode album media: %w", err)
		}

		if _, err := s.media.DeleteMany(sc, bson.M{"album_id": albumID}); err != nil {
			return nil, fmt.Errorf("delete album media: %w", err)
		}
		del, err := s.albums.DeleteOne(sc, bson.M{"_id": albumID})
		if err != nil {
			return nil, fmt.Errorf("delete album: %w", err)
		}
		if del.DeletedCount == 0 {
			return nil, ErrAlbumNotFound
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]models.MediaItem), nil
}

// ── Media items ─────────────────────────────────────────────────────

func (s *MongoStore) InsertMedia(ctx context.Context, item *models.MediaItem) (*models.MediaItem, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	res, err := s.media.InsertOne(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("mongo insert media: %w", err)
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return item, nil
}

func (s *MongoStore) MediaByID(ctx context.Context, id string) (*models.MediaItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMediaNotFound
	}
	var item models.MediaItem
	err = s.media.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find media: %w", err)
	}
	return &item, nil
}

func (s *MongoStore) ListMediaByAlbum(ctx context.Context, albumID primitive.ObjectID) ([]models.MediaItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.media.Find(ctx, bson.M{"album_id": albumID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find media: %w", err)
	}
	defer cur.Close(ctx)

	var items []models.MediaItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("mongo decode media: %w", err)
	}
	return items, nil
}

// AppendMediaToAlbum pushes the media ID onto the album's item list.
func (s *MongoStore) AppendMediaToAlbum(ctx context.Context, albumID, mediaID primitive.ObjectID) error {
	update := bson.M{
		"$push": bson.M{"media_items": mediaID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := s.albums.UpdateOne(ctx, bson.M{"_id": albumID}, update)
	if err != nil {
		return fmt.Errorf("mongo append media to album: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// UpdateMedia persists mutable media fields and bumps updated_at.
func (s *MongoStore) UpdateMedia(ctx context.Context, item *models.MediaItem) error {
	item.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"title":       item.Title,
		"description": item.Description,
		"updated_at":  item.UpdatedAt,
	}}
	res, err := s.media.UpdateOne(ctx, bson.M{"_id": item.ID}, update)
	if err != nil {
		return fmt.Errorf("mongo update media: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrMediaNotFound
	}
	return nil
}

// DeleteMediaAndUnlink removes the media document and pulls its ID out of
// the owning album's item list in one transaction.
func (s *MongoStore) DeleteMediaAndUnlink(ctx context.Context, mediaID, albumID primitive.ObjectID) error {
	sess, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		del, err := s.media.DeleteOne(sc, bson.M{"_id": mediaID})
		if err != nil {
			return nil, fmt.Errorf("delete media: %w", err)
		}
		if del.DeletedCount == 0 {
			return nil, ErrMediaNotFound
		}
		update := bson.M{
			"$pull": bson.M{"media_items": mediaID},
			"$set":  bson.M{"updated_at": time.Now()},
		}
		if _, err := s.albums.UpdateOne(sc, bson.M{"_id": albumID}, update); err != nil {
			return nil, fmt.Errorf("unlink media from album: %w", err)
		}
		return nil, nil
	})
	return err
}
