package http

import (
	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// BrowseListing serves one page of a listing for the caller's session.
//
// GET /v1/listings/:listing?page=2&pageSize=10
func (h *HTTPHandler) BrowseListing(c *fiber.Ctx) error {
	ctx := c.UserContext()
	req := model.PageRequest{
		Listing:  c.Params("listing"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 0),
	}

	result, err := h.BrowseUC.Browse(ctx, utils.GetSessionIDOrDefault(ctx, ""), req)
	if err != nil {
		return respondError(c, h.Log, err, "failed to load page")
	}
	return c.JSON(result)
}

// CountListing returns the total number of records in a listing.
func (h *HTTPHandler) CountListing(c *fiber.Ctx) error {
	listing := c.Params("listing")
	total, err := h.BrowseUC.Count(c.UserContext(), listing)
	if err != nil {
		return respondError(c, h.Log, err, "failed to count records")
	}
	return c.JSON(fiber.Map{"listing": listing, "total": total})
}

func (h *HTTPHandler) GetRecord(c *fiber.Ctx) error {
	rec, err := h.BrowseUC.Get(c.UserContext(), c.Params("listing"), c.Params("id"))
	if err != nil {
		return respondError(c, h.Log, err, "failed to load record")
	}
	return c.JSON(rec)
}

// ResetCursors forgets the session's cursor chain so paging restarts at page 1.
func (h *HTTPHandler) ResetCursors(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := h.BrowseUC.ResetCursors(ctx, utils.GetSessionIDOrDefault(ctx, ""), c.Params("listing")); err != nil {
		return respondError(c, h.Log, err, "failed to reset cursors")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
