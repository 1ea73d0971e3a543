package http

import (
	"path"

	"github.com/gofiber/fiber/v2"
)

const defaultUploadPrefix = "uploads"

// Upload stores one image from the "file" form field.
//
// POST /v1/admin/uploads (multipart: file, optional prefix)
func (h *HTTPHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Form field \"file\" is required")
	}
	upload, err := readUpload("file", fh)
	if err != nil {
		return badRequest(c, err.Error())
	}

	prefix := path.Clean("/" + c.FormValue("prefix", defaultUploadPrefix))[1:]
	if prefix == "" {
		prefix = defaultUploadPrefix
	}

	result, err := h.MediaUC.Upload(c.UserContext(), prefix, upload)
	if err != nil {
		return respondError(c, h.Log, err, "failed to store upload")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// ServeFile streams a stored upload.
func (h *HTTPHandler) ServeFile(c *fiber.Ctx) error {
	rc, handle, err := h.MediaUC.Open(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.Log, err, "failed to open file")
	}

	c.Set(fiber.HeaderContentType, handle.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	// fasthttp closes the stream once the body is written.
	return c.SendStream(rc, int(handle.Size))
}
