package api

import (
	"strings"

	"github.com/towngreen/churchsite/content"
)

// User is the authenticated admin account.
type User struct {
	ID       content.ID `json:"id,omitempty"`
	Username string     `json:"username"`
	Role     string     `json:"role,omitempty"`
}

// Pagination accompanies paged listings.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Sermon is a preached message, published as text, audio or video.
type Sermon struct {
	ID           content.ID `json:"id,omitempty"`
	SermonType   string     `json:"sermon_type,omitempty" form:"sermon_type" validate:"omitempty,oneof=text audio video"`
	Title        string     `json:"title" form:"title" validate:"required,max=200"`
	Speaker      string     `json:"speaker" form:"speaker" validate:"max=120"`
	Date         string     `json:"date" form:"date"`
	Description  string     `json:"description" form:"description"`
	AudioURL     string     `json:"audio_url" form:"audio_url" validate:"omitempty,url"`
	VideoURL     string     `json:"video_url" form:"video_url" validate:"omitempty,url"`
	ThumbnailURL string     `json:"thumbnail_url" form:"thumbnail_url"`
	ViewCount    int        `json:"view_count,omitempty"`
	CreatedAt    string     `json:"created_at,omitempty"`
}

// Kind derives the presentation from the media present: video first, then
// audio, otherwise text.
func (s Sermon) Kind() string {
	switch {
	case s.VideoURL != "":
		return "video"
	case s.AudioURL != "":
		return "audio"
	default:
		return "text"
	}
}

// DisplayTitle falls back for sermons saved without a title.
func (s Sermon) DisplayTitle() string {
	if strings.TrimSpace(s.Title) == "" {
		return "Untitled Sermon"
	}
	return s.Title
}

// Program is a recurring church activity.
type Program struct {
	ID          content.ID `json:"id,omitempty"`
	Title       string     `json:"title" form:"title" validate:"required,max=200"`
	Description string     `json:"description" form:"description"`
	DayOfWeek   string     `json:"day_of_week" form:"day_of_week"`
	Time        string     `json:"time" form:"time"`
	Location    string     `json:"location" form:"location"`
	ImageURL    string     `json:"image_url" form:"image_url"`
	CreatedAt   string     `json:"created_at,omitempty"`
}

// PrayerRequest is submitted from the prayers page.
type PrayerRequest struct {
	ID            content.ID `json:"id,omitempty"`
	RequesterName string     `json:"requester_name"`
	RequestText   string     `json:"request_text" validate:"required,max=4000"`
	IsAnonymous   bool       `json:"is_anonymous"`
	Email         string     `json:"email" validate:"omitempty,email"`
	Phone         string     `json:"phone" validate:"max=40"`
	IsAnswered    bool       `json:"is_answered,omitempty"`
	CreatedAt     string     `json:"created_at,omitempty"`
}

// DisplayName hides the requester of anonymous requests.
func (p PrayerRequest) DisplayName() string {
	if p.IsAnonymous || strings.TrimSpace(p.RequesterName) == "" {
		return "Anonymous"
	}
	return p.RequesterName
}

// ContactMessage is submitted from the contact page.
type ContactMessage struct {
	ID        content.ID `json:"id,omitempty"`
	Name      string     `json:"name" validate:"required,max=120"`
	Email     string     `json:"email" validate:"required,email"`
	Subject   string     `json:"subject" validate:"max=200"`
	Message   string     `json:"message" validate:"required,max=4000"`
	IsRead    bool       `json:"is_read,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// MembershipApplication is what the membership form submits.
type MembershipApplication struct {
	FullName string `json:"fullName" validate:"required,max=160"`
	Sex      string `json:"sex" validate:"required,oneof=male female"`
	Address  string `json:"address" validate:"required,max=300"`
	Phone    string `json:"phone" validate:"required,max=40"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// Membership statuses.
const (
	MembershipPending  = "pending"
	MembershipApproved = "approved"
	MembershipRejected = "rejected"
)

// Membership is a stored application as listed to admins.
type Membership struct {
	ID        content.ID `json:"id,omitempty"`
	FullName  string     `json:"full_name" form:"full_name"`
	Sex       string     `json:"sex" form:"sex"`
	Address   string     `json:"address" form:"address"`
	Phone     string     `json:"phone" form:"phone"`
	Email     string     `json:"email" form:"email"`
	Status    string     `json:"status" form:"status" validate:"omitempty,oneof=pending approved rejected"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// StatusOrPending treats a missing status as pending.
func (m Membership) StatusOrPending() string {
	if m.Status == "" {
		return MembershipPending
	}
	return strings.ToLower(m.Status)
}

// TestimonyRecord is a testimony submitted through the testimonies resource.
type TestimonyRecord struct {
	ID        content.ID `json:"id,omitempty"`
	Quote     string     `json:"quote" validate:"required,max=2000"`
	Author    string     `json:"author" validate:"required,max=120"`
	Role      string     `json:"role" validate:"max=120"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// Comment is a visitor comment on a sermon, program or gallery item.
type Comment struct {
	ID     content.ID `json:"id,omitempty"`
	Author string     `json:"author"`
	Text   string     `json:"text"`
	Date   string     `json:"date"`
}

// NewComment is the payload of a comment submission.
type NewComment struct {
	ItemURL     string `json:"item_url,omitempty"`
	CommentText string `json:"comment_text" validate:"required,max=2000"`
	AuthorName  string `json:"author_name" validate:"max=120"`
}

// Reactions are the like and love counters of an item.
type Reactions struct {
	Likes     int  `json:"likes"`
	Loves     int  `json:"loves"`
	UserLiked bool `json:"userLiked"`
	UserLoved bool `json:"userLoved"`
}

// ViewCount is returned when a sermon view is tracked.
type ViewCount struct {
	ViewCount int `json:"view_count"`
}
