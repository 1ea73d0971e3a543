package usecase

import "consultancy-portal/internal/portal/domain/model"

// Request/Response DTOs

// InterestRequest is a student's request to be contacted about one institution.
type InterestRequest struct {
	TargetID   string `json:"targetId" validate:"required,max=128"`
	TargetName string `json:"targetName" validate:"required,max=200"`
	TargetType string `json:"targetType" validate:"required,oneof=college university"`
	Location   string `json:"location" validate:"max=200"`
	Course     string `json:"course" validate:"max=200"`
	Percentage string `json:"percentage" validate:"max=16"`
	Phone      string `json:"phone" validate:"max=32"`
}

// Outcome reports what RecordInterest did.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeExisting Outcome = "existing"
)

type ConsultationRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,max=32"`
	Destination string `json:"destination" validate:"max=120"`
	Course      string `json:"course" validate:"max=200"`
	PreferredAt string `json:"preferredAt" validate:"max=64"`
	Message     string `json:"message" validate:"max=2000"`
}

func (r ConsultationRequest) fields() map[string]interface{} {
	return map[string]interface{}{
		"name":        r.Name,
		"email":       r.Email,
		"phone":       r.Phone,
		"destination": r.Destination,
		"course":      r.Course,
		"preferredAt": r.PreferredAt,
		"message":     r.Message,
	}
}

type InquiryRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"max=32"`
	Subject    string `json:"subject" validate:"required,max=200"`
	Message    string `json:"message" validate:"required,max=4000"`
	TargetID   string `json:"targetId" validate:"max=128"`
	TargetName string `json:"targetName" validate:"max=200"`
}

func (r InquiryRequest) fields() map[string]interface{} {
	return map[string]interface{}{
		"name":       r.Name,
		"email":      r.Email,
		"phone":      r.Phone,
		"subject":    r.Subject,
		"message":    r.Message,
		"targetId":   r.TargetID,
		"targetName": r.TargetName,
	}
}

// FileUpload is a file received from a multipart form.
type FileUpload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// UploadResult describes a stored upload.
type UploadResult struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// BrowseResult is a page together with its display-only totals.
type BrowseResult struct {
	*model.Page
	// Total is nil when the count aggregate failed.
	Total     *int64 `json:"total,omitempty"`
	PageCount int    `json:"pageCount"`
}
