package Checklist

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxAttachmentSize = 5 * 1024 * 1024 // 5 MB

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ValidateAttachment checks one uploaded file against the size limit and the
// content-type allow-list. Any failure rejects the whole submission.
func ValidateAttachment(file *multipart.FileHeader) error {
	if file.Size > MaxAttachmentSize {
		return fmt.Errorf("file size exceeds 5MB limit: %s", file.Filename)
	}
	contentType := file.Header.Get("Content-Type")
	if !allowedAttachmentTypes[contentType] {
		return fmt.Errorf("invalid file type: %s. Only images, PDF, and Word documents allowed", file.Filename)
	}
	return nil
}

// storeAttachment writes the upload under dir with a uuid name and, for
// images, a thumbnail under dir/thumbs. Returns stored path and thumb path.
func storeAttachment(file *multipart.FileHeader, dir string) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	dest := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", "", err
	}

	thumb := ""
	if imageTypes[file.Header.Get("Content-Type")] {
		thumb = makeThumbnail(dest, dir)
	}
	return dest, thumb, nil
}

// makeThumbnail is best effort; a corrupt image keeps its original upload.
func makeThumbnail(path, dir string) string {
	img, err := imaging.Open(path)
	if err != nil {
		zap.L().Warn("could not decode image for thumbnail", zap.String("path", path), zap.Error(err))
		return ""
	}

	thumbDir := filepath.Join(dir, "thumbs")
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return ""
	}

	thumbPath := filepath.Join(thumbDir, filepath.Base(path))
	resized := imaging.Fit(img, 320, 320, imaging.Lanczos)
	if err := imaging.Save(resized, thumbPath); err != nil {
		zap.L().Warn("could not save thumbnail", zap.String("path", thumbPath), zap.Error(err))
		return ""
	}
	return thumbPath
}
