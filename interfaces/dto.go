package interfaces

import (
	"encoding/json"

	"jobselect/domain"
)

type loginRequest struct {
	Email   string `json:"email" binding:"max=320"`
	Name    string `json:"name" binding:"max=255"`
	Photo   string `json:"photo" binding:"max=1024"`
	IDToken string `json:"idToken"`
}

// jobRequest is used for create and update. Owner, User and OwnerID are
// accepted so an attempt to reassign ownership can be detected; they never
// set the owner.
type jobRequest struct {
	Title       *string         `json:"title" binding:"omitempty,max=255"`
	Company     *string         `json:"company" binding:"omitempty,max=255"`
	Description *string         `json:"description"`
	LastDate    *string         `json:"lastDate"`
	DriveType   *string         `json:"driveType"`
	Owner       json.RawMessage `json:"owner"`
	User        json.RawMessage `json:"user"`
	OwnerID     json.RawMessage `json:"ownerId"`
}

func (r jobRequest) fields() domain.JobFields {
	return domain.JobFields{
		Title:       r.Title,
		Company:     r.Company,
		Description: r.Description,
		LastDate:    r.LastDate,
		DriveType:   r.DriveType,
	}
}

// ownerClaim gathers every owner identity in the body. Any non-null owner,
// user or ownerId member is a claim, whatever its shape.
func (r jobRequest) ownerClaim() domain.OwnerClaim {
	var claim domain.OwnerClaim
	for _, raw := range []json.RawMessage{r.Owner, r.User, r.OwnerID} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		claim.Present = true
		claim.Identifiers = append(claim.Identifiers, ownerIdentifiers(raw)...)
	}
	return claim
}

// ownerIdentifiers reads a bare email or ID string, or the email, id and _id
// members of an object. A member of the wrong type is kept as an empty
// identifier so it never matches.
func ownerIdentifiers(raw json.RawMessage) []string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return []string{""}
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case map[string]any:
		var ids []string
		for _, key := range []string{"email", "id", "_id"} {
			if member, ok := t[key]; ok {
				s, _ := member.(string)
				ids = append(ids, s)
			}
		}
		return ids
	}
	return []string{""}
}

// applicationForm mirrors the multipart fields of POST /applications.
type applicationForm struct {
	JobID            string `form:"jobId"`
	Name             string `form:"name"`
	Email            string `form:"email"`
	Location         string `form:"location"`
	CollegeName      string `form:"collegeName"`
	TenthPercentage  string `form:"tenthPercentage"`
	DegreePercentage string `form:"degreePercentage"`
	SelectedLanguage string `form:"selectedLanguage"`
	Communication    string `form:"communication"`
}

func (f applicationForm) toDomain() domain.ApplicationForm {
	return domain.ApplicationForm{
		Name:             f.Name,
		Email:            f.Email,
		Location:         f.Location,
		CollegeName:      f.CollegeName,
		TenthPercentage:  f.TenthPercentage,
		DegreePercentage: f.DegreePercentage,
		SelectedLanguage: f.SelectedLanguage,
		Communication:    f.Communication,
	}
}
