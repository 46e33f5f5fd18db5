package models

import (
	"time"

	"gorm.io/gorm"
)

// Student is one row of the canonical roster. The ledger treats the roster
// as read-only: nothing here is mutated by payment or bulk flows.
type Student struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	PRN          string         `json:"prn" gorm:"column:prn;size:30;not null;uniqueIndex"`
	RollNo       int            `json:"roll_no" gorm:"not null;index"`
	Name         string         `json:"name" gorm:"size:100;not null"`
	Class        string         `json:"class" gorm:"size:20;not null;index"`
	Division     string         `json:"division" gorm:"size:10;not null;index"`
	AcademicYear string         `json:"academic_year" gorm:"size:10;not null;index"` // e.g. 2024-25
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}
