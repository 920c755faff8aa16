package session

import (
	"fmt"

	"simplegest/internal/model"
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot notification shown on the next rendered page
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Data is everything kept for one browser session
type Data struct {
	Token   string                  `json:"token,omitempty"`
	User    *model.SessionUser      `json:"user,omitempty"`
	Flashes []Flash                 `json:"flashes,omitempty"`
	Draft   *model.NewRequest       `json:"draft,omitempty"`
	Pending []model.PendingMaterial `json:"pending,omitempty"`
	// Availability holds the per-line "hay material" toggles keyed by AvailabilityKey
	Availability map[string]bool `json:"availability,omitempty"`
	// Forms holds rejected form submissions keyed by screen, read back once
	Forms map[string]KeptForm `json:"forms,omitempty"`
}

// KeptForm is a rejected submission. ID names the record being edited, empty on create.
type KeptForm struct {
	ID     string              `json:"id,omitempty"`
	Values map[string][]string `json:"values,omitempty"`
}

// Get returns the first value submitted for field
func (f KeptForm) Get(field string) string {
	if v := f.Values[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// LoggedIn is true only when both the token and the user are present
func (d *Data) LoggedIn() bool {
	return d.Token != "" && d.User != nil
}

func AvailabilityKey(requestID string, index int) string {
	return fmt.Sprintf("%s:%d", requestID, index)
}
