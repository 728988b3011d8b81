package resumes

import "time"

// Status is the review state of a submitted resume.
type Status string

const (
	StatusPending       Status = "pending"
	StatusUnderReview   Status = "under_review"
	StatusApproved      Status = "approved"
	StatusNeedsRevision Status = "needs_revision"
	StatusRejected      Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusNeedsRevision, StatusRejected:
		return true
	}
	return false
}

// Resume is the persistent record of one uploaded document. FileName is the
// server-generated object key and is never serialized; clients only ever see
// the original filename.
type Resume struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	UserID       string     `bson:"userId" json:"userId"`
	OriginalName string     `bson:"originalName" json:"originalName"`
	FileName     string     `bson:"fileName" json:"-"`
	FileSize     int64      `bson:"fileSize" json:"fileSize"`
	MimeType     string     `bson:"mimeType" json:"mimeType"`
	Status       Status     `bson:"status" json:"status"`
	Score        *int       `bson:"score,omitempty" json:"score,omitempty"`
	ReviewerID   *string    `bson:"reviewerId,omitempty" json:"reviewerId,omitempty"`
	ReviewNotes  string     `bson:"reviewNotes,omitempty" json:"reviewNotes,omitempty"`
	ReviewedAt   *time.Time `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	Tags         []string   `bson:"tags,omitempty" json:"tags,omitempty"`
	UploadedAt   time.Time  `bson:"uploadedAt" json:"uploadedAt"`
}

// ListFilter narrows the admin listing. UserIDs is only applied when
// FilterUsers is set, so "search matched nobody" and "no search" stay
// distinguishable.
type ListFilter struct {
	Status      Status
	UserIDs     []string
	FilterUsers bool
	Page        int
	Limit       int
}

// ReviewUpdate carries the fields an administrator may change. Nil pointer
// fields are left untouched.
type ReviewUpdate struct {
	Status     Status
	ReviewerID string
	ReviewedAt time.Time
	Score      *int
	Notes      *string
	Tags       *[]string
}
