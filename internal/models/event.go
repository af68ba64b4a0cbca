package models

import "encoding/json"

// Event is one ingested analytics record. Identity fields come from
// request metadata (auth claims and headers), payload fields from the
// request body. Events are immutable once created and carry no ID of
// their own; the pending store assigns row identity when an event has
// to be durably retained.
//
// The JSON encoding of Event is canonical: it is the wire format, the
// pending store's log column, and the bulk document body.
type Event struct {
	UserID     string `json:"user_id,omitempty"`
	DeviceUUID string `json:"device_uuid,omitempty"`
	AppVersion string `json:"app_version,omitempty"`
	OSVersion  string `json:"os_version,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`

	Page    string          `json:"page"`
	Event   string          `json:"event"`
	Label   string          `json:"label,omitempty"`
	Target  string          `json:"target,omitempty"`
	Section string          `json:"section,omitempty"`
	Param   json.RawMessage `json:"param,omitempty"`
}

// EventPayload is the request body of POST /events. Identity fields are
// deliberately absent: they are sourced from the authenticated request,
// never from the caller-controlled body.
type EventPayload struct {
	Page    string          `json:"page"`
	Event   string          `json:"event"`
	Label   string          `json:"label,omitempty"`
	Target  string          `json:"target,omitempty"`
	Section string          `json:"section,omitempty"`
	Param   json.RawMessage `json:"param,omitempty"`
}

// RequestMeta holds the identity fields extracted from request metadata.
type RequestMeta struct {
	UserID     string
	DeviceUUID string
	AppVersion string
	OSVersion  string
	UserAgent  string
}

// NewEvent combines a validated payload with request metadata.
func NewEvent(p *EventPayload, meta *RequestMeta) *Event {
	return &Event{
		UserID:     meta.UserID,
		DeviceUUID: meta.DeviceUUID,
		AppVersion: meta.AppVersion,
		OSVersion:  meta.OSVersion,
		UserAgent:  meta.UserAgent,
		Page:       p.Page,
		Event:      p.Event,
		Label:      p.Label,
		Target:     p.Target,
		Section:    p.Section,
		Param:      p.Param,
	}
}

// Encode returns the canonical JSON encoding of the event.
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses a canonical encoding back into an Event.
func DecodeEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
