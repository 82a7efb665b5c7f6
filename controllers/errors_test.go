package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/utils"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
		wantMsg    string
	}{
		{"not found", apperror.NotFound("post", 3), http.StatusNotFound, 40400, "post 3 not found"},
		{"self reference", apperror.SelfReference("cannot follow yourself"), http.StatusBadRequest, 40010, "cannot follow yourself"},
		{"validation", apperror.Validation("title is required"), http.StatusBadRequest, 40000, "title is required"},
		{"unauthorized", apperror.Unauthorized("nope"), http.StatusUnauthorized, 40100, "nope"},
		{"forbidden", apperror.Forbidden("not yours"), http.StatusForbidden, 40300, "not yours"},
		{"duplicate", apperror.Duplicate("username", "alice"), http.StatusConflict, 40900, `username "alice" already exists`},
		{"wrapped", fmt.Errorf("load: %w", apperror.NotFound("user", 9)), http.StatusNotFound, 40400, "user 9 not found"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, 50000, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			respondError(ctx, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body utils.JSONResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestParseIDAndPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		skip, limit := parsePage(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "skip": skip, "limit": limit})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/12?skip=5&limit=x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":12,"skip":5,"limit":0}`, w.Body.String())

	for _, bad := range []string{"/items/0", "/items/-1", "/items/abc"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

type stubImages struct {
	ref string
	err error
}

func (s stubImages) SaveImage(*multipart.FileHeader) (string, error) { return s.ref, s.err }

func TestUploadController(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		images stubImages
		want   int
	}{
		{"saved", stubImages{ref: "/static/uploads/a.png"}, http.StatusOK},
		{"bad type", stubImages{err: utils.ErrUnsupportedType}, http.StatusBadRequest},
		{"too large", stubImages{err: utils.ErrFileTooLarge}, http.StatusRequestEntityTooLarge},
		{"io failure", stubImages{err: errors.New("disk full")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/upload", NewUploadController(tt.images).Upload)

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			part, err := mw.CreateFormFile("file", "a.png")
			require.NoError(t, err)
			_, _ = part.Write([]byte("x"))
			require.NoError(t, mw.Close())

			req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	r := gin.New()
	r.POST("/upload", NewUploadController(stubImages{}).Upload)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
