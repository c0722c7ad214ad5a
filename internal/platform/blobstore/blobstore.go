// Package blobstore is the document-store collaborator. It accepts a set of
// binary blobs and returns one opaque, content-addressed pointer string.
// The record ledger persists that string as an external document pointer and
// never looks inside it.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/auth"
)

var (
	ErrBundleNotFound = errors.New("document bundle not found")
	ErrEmptyBundle    = errors.New("bundle has no files")
	ErrFileTooLarge   = errors.New("file exceeds maximum allowed size")
)

// MaxFileSize is the maximum allowed size per file (25 MB).
const MaxFileSize = 25 * 1024 * 1024

// File is a single named blob inside a bundle.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Bundle groups the files uploaded together for one medical record.
type Bundle struct {
	Pointer    string    `json:"pointer"`
	Files      []File    `json:"files"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Store persists bundles keyed by their pointer.
type Store interface {
	Put(ctx context.Context, bundle *Bundle) (string, error)
	Get(ctx context.Context, pointer string) (*Bundle, error)
}

// Pointer derives the content address of a bundle: the hex SHA-256 over the
// file names and contents in name order. Identical content always yields the
// same pointer.
func Pointer(files []File) string {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := sha256.New()
	for _, f := range sorted {
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write(f.Data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	bundles map[string]*Bundle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bundles: make(map[string]*Bundle)}
}

func (s *MemoryStore) Put(_ context.Context, bundle *Bundle) (string, error) {
	if len(bundle.Files) == 0 {
		return "", ErrEmptyBundle
	}
	for _, f := range bundle.Files {
		if len(f.Data) > MaxFileSize {
			return "", ErrFileTooLarge
		}
	}

	bundle.Pointer = Pointer(bundle.Files)
	bundle.UploadedAt = time.Now().UTC()

	s.mu.Lock()
	s.bundles[bundle.Pointer] = bundle
	s.mu.Unlock()

	return bundle.Pointer, nil
}

func (s *MemoryStore) Get(_ context.Context, pointer string) (*Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bundles[pointer]
	if !ok {
		return nil, ErrBundleNotFound
	}
	return b, nil
}

// Handler exposes upload/fetch endpoints for the document collaborator.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/documents", h.Upload)
	api.GET("/documents/:pointer", h.GetBundle)
}

// Upload accepts a multipart form of files and returns the bundle pointer.
func (h *Handler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form required")
	}

	var files []File
	for _, headers := range form.File {
		for _, fh := range headers {
			if fh.Size > MaxFileSize {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, ErrFileTooLarge.Error())
			}
			src, err := fh.Open()
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			files = append(files, File{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, ErrEmptyBundle.Error())
	}

	bundle := &Bundle{
		Files:      files,
		UploadedBy: auth.PrincipalFromContext(c.Request().Context()),
	}
	pointer, err := h.store.Put(c.Request().Context(), bundle)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{"pointer": pointer})
}

func (h *Handler) GetBundle(c echo.Context) error {
	bundle, err := h.store.Get(c.Request().Context(), c.Param("pointer"))
	if err != nil {
		if errors.Is(err, ErrBundleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, bundle)
}
