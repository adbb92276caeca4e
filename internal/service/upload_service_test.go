package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"murmur/internal/config"
	"murmur/internal/featureflags"
	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uploadNamePattern = regexp.MustCompile(`^image-\d+-[0-9a-f]{12}\.(jpg|jpeg|png)$`)

func newTestUploadService(t *testing.T, flags string) *UploadService {
	t.Helper()
	svc := NewUploadService(&config.Config{UploadDir: t.TempDir(), UploadMaxSizeMB: 5}, featureflags.NewManager(flags))
	require.NoError(t, svc.EnsureDir())
	return svc
}

func TestUploadService_Save(t *testing.T) {
	svc := newTestUploadService(t, "")
	ctx := context.Background()
	small := bytes.Repeat([]byte{0xff}, 1024)

	tests := []struct {
		name        string
		in          UploadInput
		wantExt     string
		wantMessage string
	}{
		{
			name:    "uppercase png extension",
			in:      UploadInput{Filename: "photo.PNG", ContentType: "image/png", Content: small},
			wantExt: ".png",
		},
		{
			name:    "jpeg extension with unknown mime",
			in:      UploadInput{Filename: "scan.jpeg", ContentType: "application/octet-stream", Content: small},
			wantExt: ".jpeg",
		},
		{
			name:    "mime fallback derives extension",
			in:      UploadInput{Filename: "blob", ContentType: "image/jpeg", Content: small},
			wantExt: ".jpg",
		},
		{
			name:        "executable rejected",
			in:          UploadInput{Filename: "payload.exe", ContentType: "application/octet-stream", Content: small},
			wantMessage: "Only JPG, JPEG, and PNG files are allowed. Got: application/octet-stream with extension .exe",
		},
		{
			name:        "too large",
			in:          UploadInput{Filename: "big.jpg", ContentType: "image/jpeg", Content: make([]byte, 6*1024*1024)},
			wantMessage: "File too large (max 5MB)",
		},
		{
			name:        "type checked before size",
			in:          UploadInput{Filename: "big.gif", ContentType: "image/gif", Content: make([]byte, 6*1024*1024)},
			wantMessage: "Only JPG, JPEG, and PNG files are allowed. Got: image/gif with extension .gif",
		},
		{
			name:        "empty",
			in:          UploadInput{Filename: "empty.png", ContentType: "image/png"},
			wantMessage: "No file uploaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Save(ctx, tt.in)
			if tt.wantMessage != "" {
				assertAppError(t, err, models.CodeValidation)
				assert.Equal(t, tt.wantMessage, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Regexp(t, uploadNamePattern, res.Filename)
			assert.Equal(t, tt.wantExt, filepath.Ext(res.Filename))
			assert.Equal(t, "/uploads/"+res.Filename, res.URL)
			assert.Empty(t, res.PreviewURL)

			data, err := os.ReadFile(filepath.Join(svc.Dir(), res.Filename))
			require.NoError(t, err)
			assert.Equal(t, tt.in.Content, data)
		})
	}
}

func TestUploadService_SaveRejectsLeaveNoFiles(t *testing.T) {
	svc := newTestUploadService(t, "")

	_, err := svc.Save(context.Background(), UploadInput{Filename: "payload.exe", ContentType: "application/x-msdownload", Content: []byte("MZ")})
	require.Error(t, err)

	entries, err := os.ReadDir(svc.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadService_Preview(t *testing.T) {
	svc := newTestUploadService(t, "upload_previews=on")

	img := image.NewRGBA(image.Rect(0, 0, 1280, 320))
	for x := 0; x < 1280; x++ {
		img.Set(x, x%320, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	res, err := svc.Save(context.Background(), UploadInput{UserID: 1, Filename: "wide.png", ContentType: "image/png", Content: buf.Bytes()})
	require.NoError(t, err)
	require.NotEmpty(t, res.PreviewURL)
	assert.Equal(t, res.URL+".preview.webp", res.PreviewURL)

	info, err := os.Stat(filepath.Join(svc.Dir(), res.Filename+".preview.webp"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// Undecodable content is still accepted, just without a preview.
	res, err = svc.Save(context.Background(), UploadInput{UserID: 1, Filename: "noise.png", ContentType: "image/png", Content: []byte("not really a png")})
	require.NoError(t, err)
	assert.Empty(t, res.PreviewURL)
}

func TestResizeToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1280, 320))
	out := resizeToFit(src, 640, 640)
	assert.Equal(t, 640, out.Bounds().Dx())
	assert.Equal(t, 160, out.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, resizeToFit(small, 640, 640))
}
