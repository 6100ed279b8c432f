package services

import (
	"bytes"   // For in-memory image buffers
	"context" // For upload cancellation signals
	"errors"  // For the upload sentinel error
	"fmt"     // For error wrapping and object names
	"io"      // For the upload stream
	"log"     // For logging

	"github.com/disintegration/imaging" // Image resize/re-encode
	"github.com/google/uuid"            // Fresh object names per upload
	storage_go "github.com/supabase-community/storage-go"

	_ "golang.org/x/image/webp" // Register WebP decoding

	"paediprime/backend/config"
)

// ErrUploadFailed marks any failure while processing or uploading the
// profile picture. The caller treats it as fatal to the registration
// attempt; no retry happens here.
var ErrUploadFailed = errors.New("profile picture upload failed")

const (
	pfpSize    = 512 // square target edge in pixels
	pfpQuality = 80  // JPEG quality of the stored picture
	pfpFolder  = "pfps"
)

// MediaStore abstracts the remote object store: it accepts a byte stream
// under a namespaced path and resolves to a durable public URL.
type MediaStore interface {
	Upload(ctx context.Context, path string, data io.Reader, contentType string) (string, error)
}

// MediaService downsamples uploaded profile pictures to a fixed square
// JPEG and pushes them to the remote media store.
type MediaService struct {
	store MediaStore
}

// NewMediaService creates a new MediaService instance.
func NewMediaService(store MediaStore) *MediaService {
	return &MediaService{store: store}
}

// ProcessAndUpload re-encodes the raw image (JPEG/PNG/WebP) as a 512x512
// JPEG at quality 80 and uploads it under pfps/pfp_<uuid>.jpg, returning
// the public URL. Every failure wraps ErrUploadFailed.
func (s *MediaService) ProcessAndUpload(ctx context.Context, raw []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		log.Printf("[PFP Upload Error] decoding image: %v", err)
		return "", fmt.Errorf("%w: decoding image: %v", ErrUploadFailed, err)
	}

	// Center-crop to fill the square target, then re-encode.
	square := imaging.Fill(img, pfpSize, pfpSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.JPEG, imaging.JPEGQuality(pfpQuality)); err != nil {
		log.Printf("[PFP Upload Error] encoding image: %v", err)
		return "", fmt.Errorf("%w: encoding image: %v", ErrUploadFailed, err)
	}

	objectPath := fmt.Sprintf("%s/pfp_%s.jpg", pfpFolder, uuid.NewString())
	url, err := s.store.Upload(ctx, objectPath, &buf, "image/jpeg")
	if err != nil {
		log.Printf("[PFP Upload Error] uploading %s: %v", objectPath, err)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	log.Printf("Profile picture uploaded: %s", objectPath)
	return url, nil
}

// SupabaseStore is the MediaStore backed by Supabase storage.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

// NewSupabaseStore creates the storage client from configuration.
func NewSupabaseStore(cfg *config.Config) *SupabaseStore {
	client := storage_go.NewClient(
		cfg.SupabaseURL+"/storage/v1",
		cfg.SupabaseServiceRoleKey,
		nil,
	)
	log.Println("Supabase storage client initialized")
	return &SupabaseStore{client: client, bucket: cfg.SupabaseBucket}
}

// Upload streams the object to the bucket and returns its public URL.
// The storage client carries its own HTTP timeouts; ctx is accepted for
// the MediaStore contract.
func (s *SupabaseStore) Upload(_ context.Context, path string, data io.Reader, contentType string) (string, error) {
	opts := storage_go.FileOptions{ContentType: &contentType}
	if _, err := s.client.UploadFile(s.bucket, path, data, opts); err != nil {
		return "", err
	}
	return s.client.GetPublicUrl(s.bucket, path).SignedURL, nil
}
