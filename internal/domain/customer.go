package domain

import "time"

// Preferences captures what a customer is looking for in a property.
type Preferences struct {
	BudgetMin    *int64   `json:"budgetMin,omitempty"`
	BudgetMax    *int64   `json:"budgetMax,omitempty"`
	Areas        []string `json:"areas,omitempty"`
	RoomType     string   `json:"roomType,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// CustomerRecord is the single entity the CRM tracks. Exactly one
// canonical copy of the full record set exists per tenant; all reads
// resolve to it.
type CustomerRecord struct {
	ID             string      `json:"id"`
	Name           string      `json:"name,omitempty"`
	Email          string      `json:"email,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	PipelineStatus Stage       `json:"pipelineStatus"`
	Preferences    Preferences `json:"preferences"`
	Notes          string      `json:"notes,omitempty"`
	Source         string      `json:"source,omitempty"`
	IsActive       bool        `json:"isActive"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (c CustomerRecord) Clone() CustomerRecord {
	clone := c
	if c.Preferences.BudgetMin != nil {
		v := *c.Preferences.BudgetMin
		clone.Preferences.BudgetMin = &v
	}
	if c.Preferences.BudgetMax != nil {
		v := *c.Preferences.BudgetMax
		clone.Preferences.BudgetMax = &v
	}
	if c.Preferences.Areas != nil {
		clone.Preferences.Areas = append([]string(nil), c.Preferences.Areas...)
	}
	if c.Preferences.Requirements != nil {
		clone.Preferences.Requirements = append([]string(nil), c.Preferences.Requirements...)
	}
	return clone
}
