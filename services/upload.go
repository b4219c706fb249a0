package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxPhotoSize limits record photo uploads (5MB)
	MaxPhotoSize = 5 * 1024 * 1024
)

var photoMagics = map[string][]byte{
	".png":  {0x89, 'P', 'N', 'G'},
	".jpg":  {0xFF, 0xD8, 0xFF},
	".jpeg": {0xFF, 0xD8, 0xFF},
}

// ValidatePhotoUpload checks that the uploaded file is a JPEG or PNG within
// size limits. The extension alone is not trusted; the magic bytes must match.
func ValidatePhotoUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxPhotoSize {
		return fmt.Errorf("file size exceeds maximum allowed size of 5MB")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	magic, ok := photoMagics[ext]
	if !ok {
		return fmt.Errorf("only JPEG and PNG files are allowed")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	if n < len(magic) || !bytes.HasPrefix(buffer[:n], magic) {
		return fmt.Errorf("file content does not match its extension")
	}
	return nil
}
