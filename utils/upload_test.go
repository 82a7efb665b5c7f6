package utils

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestLocalUploader_SaveImage(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/static/uploads/", 1)
	u.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }

	ref, err := u.SaveImage(fileHeader(t, "cat.PNG", []byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/static/uploads/2024/03/09/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	stored := filepath.Join(dir, "2024", "03", "09", filepath.Base(ref))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalUploader_Rejects(t *testing.T) {
	u := NewLocalUploader(t.TempDir(), "/static/uploads", 1)

	_, err := u.SaveImage(fileHeader(t, "script.sh", []byte("#!/bin/sh")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := bytes.Repeat([]byte("x"), 1024*1024+1)
	_, err = u.SaveImage(fileHeader(t, "big.jpg", big))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
