package raster

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBitmap_CopyToMono(t *testing.T) {
	bm := &Bitmap{
		Mode:   PixelModeMono,
		Width:  10,
		Height: 2,
		Pitch:  2,
		Pix: []byte{
			0b1010_0000, 0b0100_0000, // row 0: pixels 0, 2 and 9
			0b1111_1111, 0b1100_0000, // row 1: all ten
		},
	}

	dst := make([]byte, 12*2)
	w, h := bm.CopyTo(dst, 12, 10, 2)
	if w != 10 || h != 2 {
		t.Fatalf("CopyTo wrote %dx%d, want 10x2", w, h)
	}

	want := []byte{
		0xFF, 0, 0xFF, 0, 0, 0, 0, 0, 0, 0xFF, 0, 0,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0,
	}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("mono expansion (-want +got):\n%s", diff)
	}
}

func TestBitmap_CopyToGrey(t *testing.T) {
	bm := &Bitmap{
		Mode:   PixelModeGrey8,
		Width:  3,
		Height: 2,
		Pitch:  4, // padded rows
		Pix:    []byte{1, 2, 3, 99, 4, 5, 6, 99},
	}

	dst := make([]byte, 4*3)
	bm.CopyTo(dst, 4, 4, 3)

	want := []byte{1, 2, 3, 0, 4, 5, 6, 0, 0, 0, 0, 0}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("grey copy (-want +got):\n%s", diff)
	}
}

func TestBitmap_CopyToClips(t *testing.T) {
	bm := &Bitmap{
		Mode:   PixelModeGrey8,
		Width:  3,
		Height: 3,
		Pitch:  3,
		Pix:    []byte{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}

	dst := make([]byte, 2*2)
	w, h := bm.CopyTo(dst, 2, 2, 2)
	if w != 2 || h != 2 {
		t.Fatalf("CopyTo wrote %dx%d, want 2x2", w, h)
	}
	if diff := cmp.Diff([]byte{1, 2, 4, 5}, dst); diff != "" {
		t.Errorf("clipped copy (-want +got):\n%s", diff)
	}
}

func TestBitmap_Empty(t *testing.T) {
	var nilBitmap *Bitmap
	if !nilBitmap.Empty() {
		t.Error("nil bitmap should be empty")
	}
	if !(&Bitmap{Width: 4}).Empty() {
		t.Error("zero-height bitmap should be empty")
	}
	if w, h := (&Bitmap{}).CopyTo(nil, 0, 5, 5); w != 0 || h != 0 {
		t.Errorf("empty bitmap copied %dx%d", w, h)
	}
}
