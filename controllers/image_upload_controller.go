package controllers

import (
	"io"
	"net/http"

	"github.com/aapokoiv/nutrition-tracker/utils"

	"github.com/gin-gonic/gin"
)

// UploadPicture accepts a multipart "picture" field.
func (h *UserController) UploadPicture(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picture file required"})
		return
	}
	if fh.Size > utils.MaxPictureBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ErrPictureTooLarge.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, utils.MaxPictureBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	if err := h.Svc.SetProfilePicture(c.Request.Context(), uid, raw); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile picture updated"})
}

// Picture serves any user's picture; pictures are not private.
func (h *UserController) Picture(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pic, err := h.Svc.ProfilePicture(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/jpeg", pic)
}
