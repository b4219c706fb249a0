package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", filename)
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_, header, err := req.FormFile("photo")
	assert.NoError(t, err)
	return header
}

func TestValidatePhotoUpload(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G'}, []byte("rest-of-file")...)
	jpeg := append([]byte{0xFF, 0xD8, 0xFF}, []byte("rest-of-file")...)

	assert.NoError(t, ValidatePhotoUpload(multipartFile(t, "mugshot.png", png)))
	assert.NoError(t, ValidatePhotoUpload(multipartFile(t, "mugshot.jpg", jpeg)))
	assert.NoError(t, ValidatePhotoUpload(multipartFile(t, "mugshot.JPEG", jpeg)))
}

func TestValidatePhotoUploadRejectsWrongType(t *testing.T) {
	err := ValidatePhotoUpload(multipartFile(t, "notes.txt", []byte("plain text")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JPEG and PNG")

	// Extension says image, content says otherwise
	err = ValidatePhotoUpload(multipartFile(t, "fake.png", []byte("GIF89a not a png")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}
