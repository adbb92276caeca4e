package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"murmur/internal/config"
	"murmur/internal/featureflags"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

const (
	DefaultUploadDir       = "./uploads"
	DefaultUploadMaxSizeMB = 5
	UploadURLPrefix        = "/uploads/"
	PreviewMaxSize         = 640
	PreviewWebPQuality     = 70
	previewSuffix          = ".preview.webp"
)

var (
	allowedUploadExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	mimeToExt         = map[string]string{"image/jpeg": ".jpg", "image/png": ".png"}
)

type UploadInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// UploadResult describes a stored upload. PreviewURL is empty when no
// preview was produced.
type UploadResult struct {
	Filename   string
	URL        string
	PreviewURL string
}

type UploadService struct {
	dir      string
	maxBytes int64
	flags    *featureflags.Manager
}

func NewUploadService(cfg *config.Config, flags *featureflags.Manager) *UploadService {
	dir := DefaultUploadDir
	maxMB := DefaultUploadMaxSizeMB
	if cfg != nil {
		if cfg.UploadDir != "" {
			dir = cfg.UploadDir
		}
		if cfg.UploadMaxSizeMB > 0 {
			maxMB = cfg.UploadMaxSizeMB
		}
	}
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return &UploadService{
		dir:      dir,
		maxBytes: int64(maxMB) * 1024 * 1024,
		flags:    flags,
	}
}

// Dir is the directory uploads are written to and served from.
func (s *UploadService) Dir() string {
	return s.dir
}

// EnsureDir creates the upload directory if it is missing.
func (s *UploadService) EnsureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// Save validates and stores an image. A file passes the type gate when its
// extension OR its declared content type is JPEG or PNG; the type gate runs
// before the size gate.
func (s *UploadService) Save(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if len(in.Content) == 0 {
		observability.UploadsTotal.WithLabelValues("empty").Inc()
		return nil, models.NewValidationError("No file uploaded")
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	contentType := normalizeContentType(in.ContentType)
	_, mimeOK := mimeToExt[contentType]
	if !allowedUploadExts[ext] && !mimeOK {
		observability.UploadsTotal.WithLabelValues("rejected_type").Inc()
		return nil, models.NewValidationError(fmt.Sprintf(
			"Only JPG, JPEG, and PNG files are allowed. Got: %s with extension %s", in.ContentType, ext))
	}

	if int64(len(in.Content)) > s.maxBytes {
		observability.UploadsTotal.WithLabelValues("rejected_size").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	if !allowedUploadExts[ext] {
		ext = mimeToExt[contentType]
	}
	name := fmt.Sprintf("image-%d-%s%s", time.Now().UnixMilli(), randomSuffix(), ext)

	if err := writeBytesToFile(filepath.Join(s.dir, name), in.Content); err != nil {
		observability.UploadsTotal.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	observability.UploadsTotal.WithLabelValues("accepted").Inc()
	observability.UploadBytes.Observe(float64(len(in.Content)))

	res := &UploadResult{Filename: name, URL: UploadURLPrefix + name}
	if s.flags.Enabled(featureflags.UploadPreviews, in.UserID) {
		if preview, err := s.writePreview(name, in.Content); err != nil {
			middleware.Logger.WarnContext(ctx, "upload preview skipped", "filename", name, "error", err.Error())
		} else {
			res.PreviewURL = UploadURLPrefix + preview
		}
	}
	return res, nil
}

// writePreview stores a WebP copy of content bounded to PreviewMaxSize.
func (s *UploadService) writePreview(name string, content []byte) (string, error) {
	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	buf := bytes.NewBuffer(nil)
	scaled := resizeToFit(decoded, PreviewMaxSize, PreviewMaxSize)
	if err := webp.Encode(buf, scaled, &webp.Options{Quality: PreviewWebPQuality}); err != nil {
		return "", err
	}
	preview := name + previewSuffix
	if err := writeBytesToFile(filepath.Join(s.dir, preview), buf.Bytes()); err != nil {
		return "", err
	}
	return preview, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// randomSuffix returns 12 random hex characters.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
