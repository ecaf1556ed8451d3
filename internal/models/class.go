package models

import "time"

type Class struct {
	ID         string    `json:"id" gorm:"primaryKey;size:320"`
	Name       string    `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	TeacherID  string    `json:"teacherId" gorm:"not null;size:255;index"`
	IsArchived bool      `json:"isArchived" gorm:"default:false"`
	IsDefault  bool      `json:"isDefault" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Class) TableName() string {
	return CollectionClasses
}

// DefaultClassName is the name given to the lazily created class that
// receives quizzes without a class.
const DefaultClassName = "General"

// ClassEnrollment joins a student to a class. The id is derived from both
// sides so the same student cannot be enrolled twice in one class.
type ClassEnrollment struct {
	ID           string    `json:"id" gorm:"primaryKey;size:600"`
	ClassID      string    `json:"classId" gorm:"not null;size:320;index"`
	StudentID    string    `json:"studentId" gorm:"not null;size:255;index"`
	StudentEmail string    `json:"studentEmail" gorm:"size:255"`
	StudentName  string    `json:"studentName" gorm:"size:200"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (ClassEnrollment) TableName() string {
	return CollectionClassEnrollments
}

// EnrollmentID builds the enrollment key for a class/student pair.
func EnrollmentID(classID, studentID string) string {
	return classID + "_" + studentID
}

// DefaultClassID is the id of a teacher's default class. It is derived so
// that at most one default class can exist per teacher.
func DefaultClassID(teacherID string) string {
	return "default_" + teacherID
}
