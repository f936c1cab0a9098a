package media

import (
	"bytes"
	"image"
	"testing"
)

func TestDecodeDimensions(t *testing.T) {
	data := pngBytes(t, 123, 45)

	w, h, err := decodeDimensions(data)
	if err != nil {
		t.Fatalf("decodeDimensions: %v", err)
	}
	if w != 123 || h != 45 {
		t.Errorf("dimensions = %dx%d, want 123x45", w, h)
	}
}

func TestDecodeDimensionsRejectsGarbage(t *testing.T) {
	if _, _, err := decodeDimensions([]byte("not an image")); err == nil {
		t.Fatal("expected an error for non-image data")
	}
}

func TestMakeThumbnail(t *testing.T) {
	data := pngBytes(t, 800, 600)

	thumb, err := makeThumbnail(data)
	if err != nil {
		t.Fatalf("makeThumbnail: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if cfg.Width != thumbnailSize || cfg.Height != thumbnailSize {
		t.Errorf("thumbnail = %dx%d, want %dx%d", cfg.Width, cfg.Height, thumbnailSize, thumbnailSize)
	}
}

func TestMakeThumbnailRejectsGarbage(t *testing.T) {
	if _, err := makeThumbnail([]byte("not an image")); err == nil {
		t.Fatal("expected an error for non-image data")
	}
}
