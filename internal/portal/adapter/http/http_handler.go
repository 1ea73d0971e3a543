package http

import (
	"consultancy-portal/internal/access"
	authhttp "consultancy-portal/internal/auth/adapter/http"
	"consultancy-portal/internal/portal/usecase"
	"consultancy-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// HTTPHandler serves the portal REST API and the profile WebSocket.
type HTTPHandler struct {
	BrowseUC   usecase.BrowseUsecaseInterface
	AdminUC    usecase.AdminUsecaseInterface
	FormsUC    usecase.FormsUsecaseInterface
	LeadUC     usecase.LeadRecorderInterface
	ProfileUC  usecase.ProfileUsecaseInterface
	SettingsUC usecase.SettingsUsecaseInterface
	MediaUC    usecase.MediaUsecaseInterface
	Log        logger.Logger

	ws WebSocketConfig
}

// Usecases groups the collaborators HTTPHandler delegates to.
type Usecases struct {
	Browse   usecase.BrowseUsecaseInterface
	Admin    usecase.AdminUsecaseInterface
	Forms    usecase.FormsUsecaseInterface
	Leads    usecase.LeadRecorderInterface
	Profile  usecase.ProfileUsecaseInterface
	Settings usecase.SettingsUsecaseInterface
	Media    usecase.MediaUsecaseInterface
}

// WebSocketConfig configures the profile stream.
type WebSocketConfig struct {
	Path       string
	SendBuffer int
}

func NewPortalHTTPHandler(uc Usecases, ws WebSocketConfig, log logger.Logger) *HTTPHandler {
	if ws.Path == "" {
		ws.Path = "/ws/student/profile"
	}
	if ws.SendBuffer <= 0 {
		ws.SendBuffer = 10
	}
	return &HTTPHandler{
		BrowseUC:   uc.Browse,
		AdminUC:    uc.Admin,
		FormsUC:    uc.Forms,
		LeadUC:     uc.Leads,
		ProfileUC:  uc.Profile,
		SettingsUC: uc.Settings,
		MediaUC:    uc.Media,
		Log:        log.WithComponent("portal_http"),
		ws:         ws,
	}
}

// RegisterRoutes mounts the API under /v1 and the profile stream at its own path.
// Every route resolves the caller first and is then gated by the access policy.
func (h *HTTPHandler) RegisterRoutes(router fiber.Router, auth *authhttp.AuthMiddleware, policy *access.Policy) {
	v1 := router.Group("/v1", auth.OptionalAuth(), SessionMiddleware())

	h.registerListingRoutes(v1, policy)
	h.registerFormRoutes(v1, policy)
	h.registerStudentRoutes(v1, policy)
	h.registerAdminRoutes(v1, policy)
	h.registerSettingsRoutes(v1, policy)
	h.registerMediaRoutes(v1, policy)

	h.registerWebSocketRoutes(router, auth, policy)
}

func (h *HTTPHandler) registerListingRoutes(router fiber.Router, policy *access.Policy) {
	listings := router.Group("/listings")
	listings.Get("/:listing/count", policy.Require(access.OpList, access.Param("listing")), h.CountListing)
	listings.Delete("/:listing/cursors", policy.Require(access.OpList, access.Param("listing")), h.ResetCursors)
	listings.Get("/:listing/:id", policy.Require(access.OpGet, access.Param("listing")), h.GetRecord)
	listings.Get("/:listing", policy.Require(access.OpList, access.Param("listing")), h.BrowseListing)
}

func (h *HTTPHandler) registerFormRoutes(router fiber.Router, policy *access.Policy) {
	router.Post("/consultations", policy.Require(access.OpCreate, access.Fixed("consultations")), h.SubmitConsultation)
	router.Post("/inquiries", policy.Require(access.OpCreate, access.Fixed("inquiries")), h.SubmitInquiry)
}

func (h *HTTPHandler) registerStudentRoutes(router fiber.Router, policy *access.Policy) {
	student := router.Group("/student")
	student.Post("/interests", policy.Require(access.OpCreate, access.Fixed("interests")), h.RecordInterest)
	student.Get("/profile", policy.Require(access.OpGet, access.Fixed("profile")), h.GetProfile)
	student.Put("/profile", policy.Require(access.OpUpdate, access.Fixed("profile")), h.UpdateProfile)
}

func (h *HTTPHandler) registerAdminRoutes(router fiber.Router, policy *access.Policy) {
	admin := router.Group("/admin")
	admin.Get("/unread", policy.Require(access.OpList, access.Fixed("unread")), h.UnreadCounts)

	entities := admin.Group("/entities")
	entities.Post("/:listing", policy.Require(access.OpCreate, access.Param("listing")), h.CreateEntity)
	entities.Put("/:listing/:id", policy.Require(access.OpUpdate, access.Param("listing")), h.UpdateEntity)
	entities.Patch("/:listing/:id/read", policy.Require(access.OpUpdate, access.Param("listing")), h.MarkRead)
	entities.Delete("/:listing/:id", policy.Require(access.OpDelete, access.Param("listing")), h.DeleteEntity)
}

func (h *HTTPHandler) registerSettingsRoutes(router fiber.Router, policy *access.Policy) {
	router.Get("/settings", policy.Require(access.OpGet, access.Fixed("settings")), h.GetPublicSettings)
	// The full document includes mail credentials, so reading it needs write access.
	router.Get("/admin/settings", policy.Require(access.OpUpdate, access.Fixed("settings")), h.GetSettings)
	router.Put("/admin/settings", policy.Require(access.OpUpdate, access.Fixed("settings")), h.SaveSettings)
}

func (h *HTTPHandler) registerMediaRoutes(router fiber.Router, policy *access.Policy) {
	router.Post("/admin/uploads", policy.Require(access.OpCreate, access.Fixed("uploads")), h.Upload)
	router.Get("/files/:id", policy.Require(access.OpGet, access.Fixed("files")), h.ServeFile)
}
