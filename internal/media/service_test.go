package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/snapvault/backend/internal/apperror"
	"github.com/snapvault/backend/internal/models"
	"github.com/snapvault/backend/internal/store"
)

// fakeStore is an in-memory album/media store.
type fakeStore struct {
	albums map[primitive.ObjectID]*models.Album
	media  map[primitive.ObjectID]*models.MediaItem

	inserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		albums: make(map[primitive.ObjectID]*models.Album),
		media:  make(map[primitive.ObjectID]*models.MediaItem),
	}
}

func (f *fakeStore) AlbumByID(_ context.Context, id string) (*models.Album, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrAlbumNotFound
	}
	album, ok := f.albums[oid]
	if !ok {
		return nil, store.ErrAlbumNotFound
	}
	cp := *album
	return &cp, nil
}

func (f *fakeStore) InsertMedia(_ context.Context, item *models.MediaItem) (*models.MediaItem, error) {
	item.ID = primitive.NewObjectID()
	f.media[item.ID] = item
	f.inserts++
	return item, nil
}

func (f *fakeStore) MediaByID(_ context.Context, id string) (*models.MediaItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrMediaNotFound
	}
	item, ok := f.media[oid]
	if !ok {
		return nil, store.ErrMediaNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeStore) UpdateMedia(_ context.Context, item *models.MediaItem) error {
	if _, ok := f.media[item.ID]; !ok {
		return store.ErrMediaNotFound
	}
	cp := *item
	f.media[item.ID] = &cp
	return nil
}

func (f *fakeStore) AppendMediaToAlbum(_ context.Context, albumID, mediaID primitive.ObjectID) error {
	album, ok := f.albums[albumID]
	if !ok {
		return store.ErrAlbumNotFound
	}
	album.MediaItems = append(album.MediaItems, mediaID)
	return nil
}

func (f *fakeStore) DeleteMediaAndUnlink(_ context.Context, mediaID, albumID primitive.ObjectID) error {
	if _, ok := f.media[mediaID]; !ok {
		return store.ErrMediaNotFound
	}
	delete(f.media, mediaID)
	if album, ok := f.albums[albumID]; ok {
		kept := album.MediaItems[:0]
		for _, id := range album.MediaItems {
			if id != mediaID {
				kept = append(kept, id)
			}
		}
		album.MediaItems = kept
	}
	return nil
}

// fakeStorage records object-store traffic.
type fakeStorage struct {
	objects   map[string][]byte
	removed   []string
	failAfter int // fail uploads once this many have succeeded; -1 disables
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte), failAfter: -1}
}

func (f *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if f.failAfter >= 0 && len(f.objects) >= f.failAfter {
		return errors.New("storage unavailable")
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "http://cdn.test/" + key
}

var (
	owner    = &models.User{ID: "user-a", Username: "alice"}
	stranger = &models.User{ID: "user-b", Username: "bob"}
)

func seedAlbum(f *fakeStore, ownerID string, isPublic bool) *models.Album {
	album := &models.Album{
		ID:         primitive.NewObjectID(),
		Name:       "Holiday",
		OwnerID:    ownerID,
		IsPublic:   isPublic,
		MediaItems: []primitive.ObjectID{},
	}
	f.albums[album.ID] = album
	return album
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func kindOf(t *testing.T, err error) apperror.Kind {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return apperror.From(err).Kind
}

func TestUploadRequiresAlbumOwnership(t *testing.T) {
	st := newFakeStore()
	a := seedAlbum(st, owner.ID, true)
	storage := newFakeStorage()
	svc := NewService(st, storage)

	_, err := svc.Upload(context.Background(), stranger, a.ID.Hex(), UploadInput{
		Filename: "a.png", ContentType: "image/png", Data: pngBytes(t, 4, 4),
	})
	if kindOf(t, err) != apperror.Forbidden {
		t.Fatalf("kind = %v, want Forbidden", apperror.From(err).Kind)
	}
	if len(storage.objects) != 0 {
		t.Error("nothing must reach storage on a forbidden upload")
	}
}

func TestUploadMissingAlbumNotFound(t *testing.T) {
	svc := NewService(newFakeStore(), newFakeStorage())

	_, err := svc.Upload(context.Background(), owner, primitive.NewObjectID().Hex(), UploadInput{
		Filename: "a.png", ContentType: "image/png", Data: pngBytes(t, 4, 4),
	})
	if kindOf(t, err) != apperror.NotFound {
		t.Fatalf("kind = %v, want NotFound", apperror.From(err).Kind)
	}
}

func TestUploadImagePipeline(t *testing.T) {
	st := newFakeStore()
	a := seedAlbum(st, owner.ID, false)
	storage := newFakeStorage()
	svc := NewService(st, storage)

	item, err := svc.Upload(context.Background(), owner, a.ID.Hex(), UploadInput{
		Filename:    "photo.png",
		ContentType: "image/png",
		Data:        pngBytes(t, 640, 480),
		Title:       "Beach",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if item.Type != models.MediaTypeImage {
		t.Errorf("type = %q, want image", item.Type)
	}
	if item.Width != 640 || item.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", item.Width, item.Height)
	}
	if _, ok := storage.objects[item.StorageKey]; !ok {
		t.Error("original asset missing from storage")
	}
	if item.ThumbnailKey == "" || !strings.HasPrefix(item.ThumbnailKey, "thumbnails/") {
		t.Errorf("thumbnail key = %q, want thumbnails/ prefix", item.ThumbnailKey)
	}
	if _, ok := storage.objects[item.ThumbnailKey]; !ok {
		t.Error("thumbnail asset missing from storage")
	}
	if len(st.albums[a.ID].MediaItems) != 1 || st.albums[a.ID].MediaItems[0] != item.ID {
		t.Error("media ID not appended to album")
	}
	if item.URL != storage.PublicURL(item.StorageKey) {
		t.Errorf("url = %q", item.URL)
	}
}

func TestUploadVideoSkipsThumbnail(t *testing.T) {
	st := newFakeStore()
	a := seedAlbum(st, owner.ID, false)
	storage := newFakeStorage()
	svc := NewService(st, storage)

	item, err := svc.Upload(context.Background(), owner, a.ID.Hex(), UploadInput{
		Filename:    "clip.mp4",
		ContentType: "video/mp4",
		Data:        []byte("not really a video"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if item.Type != models.MediaTypeVideo {
		t.Errorf("type = %q, want video", item.Type)
	}
	if item.ThumbnailKey != "" {
		t.Errorf("video upload must not produce a local thumbnail, got %q", item.ThumbnailKey)
	}
	if len(storage.objects) != 1 {
		t.Errorf("storage holds %d objects, want just the original", len(storage.objects))
	}
}

func TestUploadManyIsSequentialWithoutRollback(t *testing.T) {
	st := newFakeStore()
	a := seedAlbum(st, owner.ID, false)
	storage := newFakeStorage()
	storage.failAfter = 2 // first file (original + thumbnail) succeeds, second fails
	svc := NewService(st, storage)

	files := []UploadInput{
		{Filename: "one.png", ContentType: "image/png", Data: pngBytes(t, 4, 4)},
		{Filename: "two.png", ContentType: "image/png", Data: pngBytes(t, 4, 4)},
	}
	items, err := svc.UploadMany(context.Background(), owner, a.ID.Hex(), files)
	if err == nil {
		t.Fatal("expected the second upload to fail")
	}
	if len(items) != 1 {
		t.Fatalf("got %d successful items, want 1", len(items))
	}
	// The first item stays persisted: no compensating rollback.
	if st.inserts != 1 {
		t.Errorf("store inserts = %d, want 1", st.inserts)
	}
	if len(st.albums[a.ID].MediaItems) != 1 {
		t.Errorf("album media list has %d entries, want 1", len(st.albums[a.ID].MediaItems))
	}
}

func TestDeleteByUploaderRemovesAssetExactlyOnce(t *testing.T) {
	st := newFakeStore()
	a := seedAlbum(st, owner.ID, false)
	storage := newFakeStorage()
	svc := NewService(st, storage)

	item, err := svc.Upload(context.Background(), owner, a.ID.Hex(), UploadInput{
		Filename: "clip.mp4", ContentType: "video/mp4", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(context.Background(), owner, item.ID.Hex()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(storage.removed) != 1 || storage.removed[0] != item.StorageKey {
		t.Errorf("storage removals = %v, want exactly [%q]", storage.removed, item.StorageKey)
	}
	if len(st.albums[a.ID].MediaItems) != 0 {
		t.Error("media ID still referenced by album after delete")
	}
	if _, err := svc.Get(context.Background(), owner, item.ID.Hex()); kindOf(t, err) != apperror.NotFound {
		t.Error("deleted item should read back as NotFound")
	}
}

func TestDeletePermissions(t *testing.T) {
	tests := []struct {
		name      string
		requester *models.User
		wantKind  apperror.Kind
		wantErr   bool
	}{
		{"uploader", owner, 0, false},
		{"album owner", owner, 0, false},
		{"stranger", stranger, apperror.Forbidden, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newFakeStore()
			a := seedAlbum(st, owner.ID, true)
			storage := newFakeStorage()
			svc := NewService(st, storage)
			item, err := svc.Upload(context.Background(), owner, a.ID.Hex(), UploadInput{
				Filename: "clip.mp4", ContentType: "video/mp4", Data: []byte("x"),
			})
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}

			err = svc.Delete(context.Background(), tt.requester, item.ID.Hex())
			if tt.wantErr {
				if kindOf(t, err) != tt.wantKind {
					t.Errorf("kind = %v, want %v", apperror.From(err).Kind, tt.wantKind)
				}
			} else if err != nil {
				t.Errorf("Delete: %v", err)
			}
		})
	}
}

func TestUpdateOnlyByUploader(t *testing.T) {
	st := newFakeStore()
	a := seedAlbum(st, owner.ID, true)
	storage := newFakeStorage()
	svc := NewService(st, storage)
	item, err := svc.Upload(context.Background(), owner, a.ID.Hex(), UploadInput{
		Filename: "clip.mp4", ContentType: "video/mp4", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	title := "New title"
	_, err = svc.Update(context.Background(), stranger, item.ID.Hex(), &models.UpdateMediaRequest{Title: &title})
	if kindOf(t, err) != apperror.Forbidden {
		t.Fatalf("stranger update kind = %v, want Forbidden", apperror.From(err).Kind)
	}

	updated, err := svc.Update(context.Background(), owner, item.ID.Hex(), &models.UpdateMediaRequest{Title: &title})
	if err != nil {
		t.Fatalf("uploader update: %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q", updated.Title)
	}
}

func TestGetFollowsAlbumVisibility(t *testing.T) {
	st := newFakeStore()
	private := seedAlbum(st, owner.ID, false)
	storage := newFakeStorage()
	svc := NewService(st, storage)
	item, err := svc.Upload(context.Background(), owner, private.ID.Hex(), UploadInput{
		Filename: "clip.mp4", ContentType: "video/mp4", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.Get(context.Background(), stranger, item.ID.Hex()); kindOf(t, err) != apperror.Forbidden {
		t.Error("stranger must not read media in a private album")
	}
	if _, err := svc.Get(context.Background(), owner, item.ID.Hex()); err != nil {
		t.Errorf("owner read: %v", err)
	}
}
