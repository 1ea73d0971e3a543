package model

import "time"

// TargetType is the kind of institution a lead points at.
type TargetType string

const (
	TargetCollege    TargetType = "college"
	TargetUniversity TargetType = "university"
)

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	return t == TargetCollege || t == TargetUniversity
}

// IDField is the lead field holding the target ID.
func (t TargetType) IDField() string {
	if t == TargetUniversity {
		return "universityId"
	}
	return "collegeId"
}

// NameField is the lead field holding the denormalized target name.
func (t TargetType) NameField() string {
	if t == TargetUniversity {
		return "universityName"
	}
	return "collegeName"
}

// Lead fields.
const (
	LeadStudentID      = "studentId"
	LeadStudentName    = "studentName"
	LeadStudentEmail   = "studentEmail"
	LeadStudentPhone   = "studentPhone"
	LeadStudentPicture = "studentPicture"
	LeadTargetType     = "targetType"
	LeadLocation       = "location"
	LeadLastCourse     = "lastCourse"
	LeadPercentage     = "percentage"
)

// Lead is a student's registered interest in one college or university.
// Student fields are copied at creation and never refreshed.
type Lead struct {
	ID             string     `json:"id"`
	StudentID      string     `json:"studentId"`
	StudentName    string     `json:"studentName"`
	StudentEmail   string     `json:"studentEmail"`
	StudentPhone   string     `json:"studentPhone"`
	StudentPicture string     `json:"studentPicture"`
	TargetType     TargetType `json:"targetType"`
	TargetID       string     `json:"targetId"`
	TargetName     string     `json:"targetName"`
	Location       string     `json:"location"`
	LastCourse     string     `json:"lastCourse"`
	Percentage     string     `json:"percentage"`
	Read           bool       `json:"read"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Fields renders the lead for insertion. createdAt is left to the store.
func (l Lead) Fields() map[string]interface{} {
	return map[string]interface{}{
		LeadStudentID:            l.StudentID,
		LeadStudentName:          l.StudentName,
		LeadStudentEmail:         l.StudentEmail,
		LeadStudentPhone:         l.StudentPhone,
		LeadStudentPicture:       l.StudentPicture,
		LeadTargetType:           string(l.TargetType),
		l.TargetType.IDField():   l.TargetID,
		l.TargetType.NameField(): l.TargetName,
		LeadLocation:             l.Location,
		LeadLastCourse:           l.LastCourse,
		LeadPercentage:           l.Percentage,
		FieldRead:                false,
		FieldCreatedAt:           ServerTimestamp,
	}
}

// LeadFromRecord reads a lead back from a stored record.
func LeadFromRecord(r Record) Lead {
	tt := TargetType(r.String(LeadTargetType))
	if !tt.Valid() {
		tt = TargetCollege
		if r.String(TargetUniversity.IDField()) != "" {
			tt = TargetUniversity
		}
	}
	return Lead{
		ID:             r.ID,
		StudentID:      r.String(LeadStudentID),
		StudentName:    r.String(LeadStudentName),
		StudentEmail:   r.String(LeadStudentEmail),
		StudentPhone:   r.String(LeadStudentPhone),
		StudentPicture: r.String(LeadStudentPicture),
		TargetType:     tt,
		TargetID:       r.String(tt.IDField()),
		TargetName:     r.String(tt.NameField()),
		Location:       r.String(LeadLocation),
		LastCourse:     r.String(LeadLastCourse),
		Percentage:     r.String(LeadPercentage),
		Read:           r.Bool(FieldRead),
		CreatedAt:      r.CreatedAt(),
	}
}
