package model

// Student profile fields, stored at students/{uid}.
const (
	StudentName       = "name"
	StudentEmail      = "email"
	StudentPhone      = "phone"
	StudentPicture    = "picture"
	StudentLocation   = "location"
	StudentLastCourse = "lastCourse"
	StudentPercentage = "percentage"
)

// Student is the profile of a signed-in student.
type Student struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Picture    string `json:"picture"`
	Location   string `json:"location"`
	LastCourse string `json:"lastCourse"`
	Percentage string `json:"percentage"`
}

// StudentFromRecord reads a profile from its record.
func StudentFromRecord(r Record) Student {
	return Student{
		ID:         r.ID,
		Name:       r.String(StudentName),
		Email:      r.String(StudentEmail),
		Phone:      r.String(StudentPhone),
		Picture:    r.String(StudentPicture),
		Location:   r.String(StudentLocation),
		LastCourse: r.String(StudentLastCourse),
		Percentage: r.String(StudentPercentage),
	}
}

// ProfileUpdate carries the editable profile fields; nil fields are left untouched.
type ProfileUpdate struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	Picture    *string `json:"picture" validate:"omitempty,url"`
	Location   *string `json:"location" validate:"omitempty,max=200"`
	LastCourse *string `json:"lastCourse" validate:"omitempty,max=200"`
	Percentage *string `json:"percentage" validate:"omitempty,max=16"`
}

// Fields returns only the fields that were set.
func (u ProfileUpdate) Fields() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(name string, v *string) {
		if v != nil {
			out[name] = *v
		}
	}
	set(StudentName, u.Name)
	set(StudentPhone, u.Phone)
	set(StudentPicture, u.Picture)
	set(StudentLocation, u.Location)
	set(StudentLastCourse, u.LastCourse)
	set(StudentPercentage, u.Percentage)
	return out
}
