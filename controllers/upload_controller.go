package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/luntan/utils"
)

// UploadController accepts images for posts.
type UploadController struct {
	images ImageStore
}

func NewUploadController(images ImageStore) *UploadController {
	return &UploadController{images: images}
}

// Upload stores a single image and returns its URL for use as a post image.
func (u *UploadController) Upload(ctx *gin.Context) {
	ref, ok := saveUpload(ctx, u.images)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"url": ref})
}

// saveUpload reads the "file" form field and writes the error response itself on failure.
func saveUpload(ctx *gin.Context, images ImageStore) (string, bool) {
	header, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "no file uploaded")
		return "", false
	}
	ref, err := images.SaveImage(header)
	switch {
	case errors.Is(err, utils.ErrUnsupportedType):
		utils.Error(ctx, http.StatusBadRequest, 40033, "only jpg, png, gif and webp images are accepted")
		return "", false
	case errors.Is(err, utils.ErrFileTooLarge):
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41301, "file too large")
		return "", false
	case err != nil:
		_ = ctx.Error(err)
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to save file")
		return "", false
	}
	return ref, true
}
