package model

import "time"

// SiteSettings is the singleton settings/site record.
type SiteSettings struct {
	Hero     HeroSettings    `json:"hero" bson:"hero"`
	Banners  []Banner        `json:"banners" bson:"banners" validate:"dive"`
	About    AboutSettings   `json:"about" bson:"about"`
	Contact  ContactSettings `json:"contact" bson:"contact"`
	Social   SocialLinks     `json:"social" bson:"social"`
	Email    EmailSettings   `json:"email" bson:"email"`
	Sections map[string]bool `json:"sections" bson:"sections"`

	UpdatedAt time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

type HeroSettings struct {
	Title    string `json:"title" bson:"title"`
	Subtitle string `json:"subtitle" bson:"subtitle"`
	CTAText  string `json:"ctaText" bson:"ctaText"`
	CTALink  string `json:"ctaLink" bson:"ctaLink"`
}

type Banner struct {
	ImageURL string `json:"imageUrl" bson:"imageUrl" validate:"omitempty,url"`
	Caption  string `json:"caption" bson:"caption"`
	Link     string `json:"link" bson:"link"`
}

type AboutSettings struct {
	Heading  string `json:"heading" bson:"heading"`
	Body     string `json:"body" bson:"body"`
	ImageURL string `json:"imageUrl" bson:"imageUrl"`
}

type ContactSettings struct {
	Phone    string `json:"phone" bson:"phone"`
	Email    string `json:"email" bson:"email" validate:"omitempty,email"`
	Address  string `json:"address" bson:"address"`
	MapEmbed string `json:"mapEmbed" bson:"mapEmbed"`
}

type SocialLinks struct {
	Facebook  string `json:"facebook" bson:"facebook"`
	Instagram string `json:"instagram" bson:"instagram"`
	LinkedIn  string `json:"linkedin" bson:"linkedin"`
	YouTube   string `json:"youtube" bson:"youtube"`
	WhatsApp  string `json:"whatsapp" bson:"whatsapp"`
}

// EmailSettings holds the SMTP credentials used for admin notifications.
type EmailSettings struct {
	Host     string `json:"host" bson:"host"`
	Port     int    `json:"port" bson:"port" validate:"omitempty,min=1,max=65535"`
	Username string `json:"username" bson:"username"`
	Password string `json:"password,omitempty" bson:"password"`
	From     string `json:"from" bson:"from" validate:"omitempty,email"`
	NotifyTo string `json:"notifyTo" bson:"notifyTo" validate:"omitempty,email"`
	UseTLS   bool   `json:"useTls" bson:"useTls"`
	Disabled bool   `json:"disabled" bson:"disabled"`
}

// Configured reports whether notifications can be sent.
func (e EmailSettings) Configured() bool {
	return !e.Disabled && e.Host != "" && e.Port != 0 && e.From != "" && e.NotifyTo != ""
}

// Public returns a copy safe to serve to anonymous visitors.
func (s SiteSettings) Public() SiteSettings {
	out := s
	out.Email = EmailSettings{}
	return out
}

// SectionVisible reports whether a section toggle is on. Unknown sections are visible.
func (s SiteSettings) SectionVisible(name string) bool {
	v, ok := s.Sections[name]
	return !ok || v
}
