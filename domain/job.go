package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" or a full RFC3339 timestamp; time-of-day is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewDate(t), nil
	}
	return Date{}, fmt.Errorf("malformed date %q", s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores dates as "YYYY-MM-DD" so every dialect keeps them date-only.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DriveType is the recruitment-event category of a posting.
type DriveType string

const (
	DriveWalkIn           DriveType = "walk-in"
	DriveDirectFaceToFace DriveType = "direct-face-to-face"
)

var driveTypeAliases = map[string]DriveType{
	"walk-in":             DriveWalkIn,
	"walk-in drive":       DriveWalkIn,
	"walkin":              DriveWalkIn,
	"direct-face-to-face": DriveDirectFaceToFace,
	"direct face-to-face": DriveDirectFaceToFace,
	"direct face to face": DriveDirectFaceToFace,
}

// ParseDriveType accepts the canonical codes and the form labels used by the web client.
func ParseDriveType(s string) (DriveType, bool) {
	dt, ok := driveTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return dt, ok
}

// Label is the human-readable form shown in the job form.
func (d DriveType) Label() string {
	switch d {
	case DriveWalkIn:
		return "Walk-in Drive"
	case DriveDirectFaceToFace:
		return "Direct Face-to-Face"
	}
	return string(d)
}

// MarshalJSON emits the label, which is what the job form submits and
// selects on, so a posted value reads back unchanged.
func (d DriveType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Label())
}

// UnmarshalJSON accepts either a code or a label. Unknown values are kept
// verbatim; validation happens on JobFields.
func (d *DriveType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if dt, ok := ParseDriveType(s); ok {
		*d = dt
		return nil
	}
	*d = DriveType(s)
	return nil
}

// Job is a posting. OwnerID is set from the creating session and never reassigned.
type Job struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Company     string    `gorm:"size:255;not null" json:"company"`
	Description string    `gorm:"type:text;not null" json:"description"`
	LastDate    Date      `gorm:"type:varchar(10);not null" json:"lastDate"`
	DriveType   DriveType `gorm:"size:32;not null" json:"driveType"`
	OwnerID     string    `gorm:"size:36;index;not null" json:"-"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnedBy reports whether the session identity is the recorded owner.
func (j Job) OwnedBy(s Session) bool {
	return SameEmail(s.User.Email, j.Owner.Email)
}

// OwnerClaim is the owner identity a job update body names. Each identifier
// is an email or a user ID; a claim whose shape could not be read is Present
// with no identifiers.
type OwnerClaim struct {
	Present     bool
	Identifiers []string
}

// Names reports whether every identifier in the claim refers to owner.
func (c OwnerClaim) Names(owner User) bool {
	if len(c.Identifiers) == 0 {
		return false
	}
	for _, id := range c.Identifiers {
		id = strings.TrimSpace(id)
		if (owner.ID == "" || id != owner.ID) && !SameEmail(id, owner.Email) {
			return false
		}
	}
	return true
}

// JobFields is the client-supplied part of a Job. Nil fields are "not provided".
type JobFields struct {
	Title       *string
	Company     *string
	Description *string
	LastDate    *string
	DriveType   *string
}

// JobPatch is a validated JobFields; only non-nil members are applied.
type JobPatch struct {
	Title       *string
	Company     *string
	Description *string
	LastDate    *Date
	DriveType   *DriveType
}

// ValidateForCreate requires every field and returns a fully-populated patch.
func (f JobFields) ValidateForCreate() (JobPatch, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"title", f.Title},
		{"company", f.Company},
		{"description", f.Description},
		{"lastDate", f.LastDate},
		{"driveType", f.DriveType},
	}
	for _, r := range required {
		if r.value == nil || strings.TrimSpace(*r.value) == "" {
			return JobPatch{}, FieldError(KindValidationFailed, r.name, "%s is required", r.name)
		}
	}
	return f.ValidateForUpdate()
}

// ValidateForUpdate checks only the provided fields; a provided field may not be blank.
func (f JobFields) ValidateForUpdate() (JobPatch, error) {
	var p JobPatch
	text := []struct {
		name string
		in   *string
		out  **string
	}{
		{"title", f.Title, &p.Title},
		{"company", f.Company, &p.Company},
		{"description", f.Description, &p.Description},
	}
	for _, t := range text {
		if t.in == nil {
			continue
		}
		v := strings.TrimSpace(*t.in)
		if v == "" {
			return JobPatch{}, FieldError(KindValidationFailed, t.name, "%s must not be empty", t.name)
		}
		*t.out = &v
	}
	if f.LastDate != nil {
		d, err := ParseDate(*f.LastDate)
		if err != nil {
			return JobPatch{}, FieldError(KindValidationFailed, "lastDate", "lastDate must be a date (YYYY-MM-DD)")
		}
		p.LastDate = &d
	}
	if f.DriveType != nil {
		dt, ok := ParseDriveType(*f.DriveType)
		if !ok {
			return JobPatch{}, FieldError(KindValidationFailed, "driveType", "driveType must be %q or %q", DriveWalkIn, DriveDirectFaceToFace)
		}
		p.DriveType = &dt
	}
	return p, nil
}

// Apply overwrites provided fields on j and leaves the rest unchanged.
func (p JobPatch) Apply(j *Job) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Company != nil {
		j.Company = *p.Company
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.LastDate != nil {
		j.LastDate = *p.LastDate
	}
	if p.DriveType != nil {
		j.DriveType = *p.DriveType
	}
}

// Columns lists the database columns a patch touches.
func (p JobPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Company != nil {
		cols["company"] = *p.Company
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.LastDate != nil {
		cols["last_date"] = *p.LastDate
	}
	if p.DriveType != nil {
		cols["drive_type"] = *p.DriveType
	}
	return cols
}
