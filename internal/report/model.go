// File: internal/report/model.go
package report

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a user-submitted abuse report against a lesson.
type Report struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LessonID      primitive.ObjectID `bson:"lessonId" json:"lesson_id"`
	ReporterEmail string             `bson:"reporterEmail" json:"reporter_email"`
	ReportedEmail string             `bson:"reportedEmail" json:"reported_email"`
	Reason        string             `bson:"reason" json:"reason"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}

// CreateReportRequest is the payload for filing a report. The reporter
// identity always comes from the verified credential, never the body.
type CreateReportRequest struct {
	LessonID      string `json:"lesson_id" binding:"required"`
	ReportedEmail string `json:"reported_email" binding:"required,email"`
	Reason        string `json:"reason" binding:"required,min=3,max=1000"`
}
