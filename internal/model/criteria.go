package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
)

// Supported discovery platforms.
const (
	PlatformLinkedIn  = "linkedin"
	PlatformIndeed    = "indeed"
	PlatformGlassdoor = "glassdoor"
)

// Criteria is a platform-tagged union: exactly one variant matching Platform
// must be set. Each variant carries only the fields its discovery platform
// understands.
type Criteria struct {
	Platform  string             `json:"platform"`
	LinkedIn  *LinkedInCriteria  `json:"linkedin,omitempty"`
	Indeed    *IndeedCriteria    `json:"indeed,omitempty"`
	Glassdoor *GlassdoorCriteria `json:"glassdoor,omitempty"`
}

type LinkedInCriteria struct {
	Keywords    []string `json:"keywords"`
	Location    string   `json:"location"`
	ResultLimit int      `json:"result_limit"`
	RemoteOnly  bool     `json:"remote_only,omitempty"`
}

type IndeedCriteria struct {
	Keywords    []string `json:"keywords"`
	Cities      []string `json:"cities"`
	ResultLimit int      `json:"result_limit"`
	Radius      int      `json:"radius,omitempty"`
}

type GlassdoorCriteria struct {
	Keywords    []string `json:"keywords"`
	Location    string   `json:"location"`
	ResultLimit int      `json:"result_limit"`
	MinRating   float64  `json:"min_rating,omitempty"`
}

// Validate checks the union before a discovery request is sent: the tag must
// name a known platform and exactly the matching variant must be populated.
func (c *Criteria) Validate() error {
	switch c.Platform {
	case PlatformLinkedIn:
		if c.LinkedIn == nil || c.Indeed != nil || c.Glassdoor != nil {
			return appErrors.NewValidation("criteria.linkedin")
		}
		return validateCommon(c.LinkedIn.Keywords, c.LinkedIn.ResultLimit)
	case PlatformIndeed:
		if c.Indeed == nil || c.LinkedIn != nil || c.Glassdoor != nil {
			return appErrors.NewValidation("criteria.indeed")
		}
		if len(c.Indeed.Cities) == 0 {
			return appErrors.NewValidation("criteria.indeed.cities")
		}
		return validateCommon(c.Indeed.Keywords, c.Indeed.ResultLimit)
	case PlatformGlassdoor:
		if c.Glassdoor == nil || c.LinkedIn != nil || c.Indeed != nil {
			return appErrors.NewValidation("criteria.glassdoor")
		}
		return validateCommon(c.Glassdoor.Keywords, c.Glassdoor.ResultLimit)
	default:
		return appErrors.NewValidation("criteria.platform")
	}
}

// Value / Scan store the union as a jsonb column.

func (c Criteria) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Criteria) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into Criteria", src)
	}
}

func validateCommon(keywords []string, limit int) error {
	if len(keywords) == 0 {
		return appErrors.NewValidation("criteria.keywords")
	}
	if limit <= 0 || limit > 500 {
		return appErrors.NewValidation("criteria.result_limit")
	}
	return nil
}
