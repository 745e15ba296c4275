package webhook

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Payload is the normalized inbound notification: the event name and the
// entity id carried under data[FIELDS][ID]. Either may be empty; the router
// treats that as a no-op.
type Payload struct {
	Event string
	ID    string
}

// Parse decodes a webhook body. Bitrix posts form-encoded bodies by
// default; JSON is accepted as well.
func Parse(contentType string, body []byte) (Payload, error) {
	if strings.Contains(contentType, "application/json") {
		var raw struct {
			Event string `json:"event"`
			Data  struct {
				Fields struct {
					ID string `json:"ID"`
				} `json:"FIELDS"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return Payload{}, fmt.Errorf("decode json payload: %w", err)
		}
		return Payload{
			Event: strings.TrimSpace(raw.Event),
			ID:    strings.TrimSpace(raw.Data.Fields.ID),
		}, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return Payload{}, fmt.Errorf("decode form payload: %w", err)
	}
	return Payload{
		Event: strings.TrimSpace(values.Get("event")),
		ID:    strings.TrimSpace(values.Get("data[FIELDS][ID]")),
	}, nil
}
