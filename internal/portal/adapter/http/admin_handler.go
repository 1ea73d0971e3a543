package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"consultancy-portal/internal/portal/usecase"

	"github.com/gofiber/fiber/v2"
)

// payloadField holds a JSON object in multipart requests. Other form values
// are merged over it as plain strings.
const payloadField = "payload"

func (h *HTTPHandler) CreateEntity(c *fiber.Ctx) error {
	fields, files, err := h.parseEntity(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	m, err := h.AdminUC.Create(c.UserContext(), c.Params("listing"), fields, files)
	if err != nil {
		return respondError(c, h.Log, err, "failed to create record")
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *HTTPHandler) UpdateEntity(c *fiber.Ctx) error {
	fields, files, err := h.parseEntity(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	m, err := h.AdminUC.Update(c.UserContext(), c.Params("listing"), c.Params("id"), fields, files)
	if err != nil {
		return respondError(c, h.Log, err, "failed to update record")
	}
	return c.JSON(m)
}

func (h *HTTPHandler) DeleteEntity(c *fiber.Ctx) error {
	m, err := h.AdminUC.Delete(c.UserContext(), c.Params("listing"), c.Params("id"))
	if err != nil {
		return respondError(c, h.Log, err, "failed to delete record")
	}
	return c.JSON(m)
}

// MarkRead flags an inbox record as read.
func (h *HTTPHandler) MarkRead(c *fiber.Ctx) error {
	m, err := h.AdminUC.MarkRead(c.UserContext(), c.Params("listing"), c.Params("id"))
	if err != nil {
		return respondError(c, h.Log, err, "failed to mark record read")
	}
	return c.JSON(m)
}

// UnreadCounts returns the number of unread records per inbox listing.
func (h *HTTPHandler) UnreadCounts(c *fiber.Ctx) error {
	counts, err := h.AdminUC.UnreadCounts(c.UserContext())
	if err != nil {
		return respondError(c, h.Log, err, "failed to count unread records")
	}
	return c.JSON(fiber.Map{"unread": counts})
}

// parseEntity reads record fields from a JSON body or a multipart form.
func (h *HTTPHandler) parseEntity(c *fiber.Ctx) (map[string]interface{}, []usecase.FileUpload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fields := map[string]interface{}{}
		if err := c.BodyParser(&fields); err != nil {
			return nil, nil, fmt.Errorf("failed to parse request body")
		}
		return fields, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse multipart form")
	}

	fields := map[string]interface{}{}
	if raw := form.Value[payloadField]; len(raw) > 0 && raw[0] != "" {
		if err := json.Unmarshal([]byte(raw[0]), &fields); err != nil {
			return nil, nil, fmt.Errorf("field %q must be a JSON object", payloadField)
		}
	}
	for key, values := range form.Value {
		if key == payloadField || len(values) == 0 {
			continue
		}
		fields[key] = values[0]
	}

	var files []usecase.FileUpload
	for field, headers := range form.File {
		for _, fh := range headers {
			upload, err := readUpload(field, fh)
			if err != nil {
				return nil, nil, err
			}
			files = append(files, upload)
		}
	}
	return fields, files, nil
}

func readUpload(field string, fh *multipart.FileHeader) (usecase.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return usecase.FileUpload{}, fmt.Errorf("failed to read file %q", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return usecase.FileUpload{}, fmt.Errorf("failed to read file %q", fh.Filename)
	}
	return usecase.FileUpload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
