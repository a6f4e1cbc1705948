package backends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/adapters"
)

const OrbitEndpoint = "https://app.orbit.love/api/v1"

// Orbit records events as custom activities on an Orbit member identified by
// the "email" prop. A "tags" prop ([]string or comma separated string) is
// added to the member, and a "description" prop becomes the activity
// description.
type Orbit struct {
	analytics.Gate
	client
	workspaceID string
	apiKey      string
	dataOrigin  string
	ids         *ulidSource
}

var (
	_ analytics.Adapter   = (*Orbit)(nil)
	_ analytics.Validator = (*Orbit)(nil)
)

type orbitActivity struct {
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	ActivityTypeKey string         `json:"activity_type_key"`
	Link            string         `json:"link,omitempty"`
	Key             string         `json:"key"`
	OccurredAt      string         `json:"occurred_at"`
	Properties      map[string]any `json:"properties,omitempty"`
}

type orbitIdentity struct {
	Source string `json:"source"`
	Email  string `json:"email"`
}

type orbitMember struct {
	TagsToAdd string `json:"tags_to_add"`
}

type orbitPayload struct {
	Activity orbitActivity `json:"activity"`
	Identity orbitIdentity `json:"identity"`
	Member   *orbitMember  `json:"member,omitempty"`
}

func NewOrbit(workspaceID, apiKey, dataOrigin string, opts ...Option) *Orbit {
	c, _ := newClient("Orbit", OrbitEndpoint, opts)
	c.endpoint = strings.TrimRight(c.endpoint, "/")
	return &Orbit{
		client:      c,
		workspaceID: workspaceID,
		apiKey:      apiKey,
		dataOrigin:  dataOrigin,
		ids:         newULIDSource(),
	}
}

func (o *Orbit) Name() string { return "Orbit" }

func (o *Orbit) CreateEvent(ctx context.Context, event *analytics.Event) (bool, error) {
	if !o.Enabled() {
		return false, nil
	}
	if event.Type() == "" {
		return false, o.require("type")
	}
	email, ok := stringProp(event, "email")
	if !ok {
		return false, o.require("email")
	}

	now := o.now()
	payload := orbitPayload{
		Activity: orbitActivity{
			Title:           event.Name(),
			ActivityTypeKey: event.Type(),
			Link:            event.URL(),
			Key:             o.ids.New(now).String(),
			OccurredAt:      now.UTC().Format(time.RFC3339),
			Properties:      o.properties(event.Props()),
		},
		Identity: orbitIdentity{Source: "email", Email: email},
	}
	if payload.Activity.Title == "" {
		payload.Activity.Title = event.Type()
	}
	if desc, ok := stringProp(event, "description"); ok {
		payload.Activity.Description = desc
	}
	if tags := orbitTags(event.Props()["tags"]); tags != "" {
		payload.Member = &orbitMember{TagsToAdd: tags}
	}

	body, err := o.marshal("props", payload)
	if err != nil {
		return false, err
	}

	return o.fire(ctx, &adapters.HTTPRequest{
		Method:  http.MethodPost,
		URL:     o.endpoint + "/" + url.PathEscape(o.workspaceID) + "/activities",
		Headers: jsonHeaders(map[string]string{"Authorization": "Bearer " + o.apiKey}),
		Body:    body,
	})
}

// Validate reports whether the member named by the "email" prop has an
// activity whose activity_type_key is event.Type. An unknown member is not
// an error.
func (o *Orbit) Validate(ctx context.Context, event *analytics.Event) (bool, error) {
	if !o.Enabled() {
		return false, nil
	}
	if event.Type() == "" {
		return false, o.require("type")
	}
	email, ok := stringProp(event, "email")
	if !ok {
		return false, o.require("email")
	}

	workspace := o.endpoint + "/" + url.PathEscape(o.workspaceID)
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}

	var member struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	query := url.Values{"source": {"email"}, "email": {email}}
	err := o.get(ctx, workspace+"/members/find?"+query.Encode(), headers, &member)
	var httpErr *analytics.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if member.Data.ID == "" {
		return false, nil
	}

	var activities struct {
		Data []struct {
			Attributes struct {
				ActivityTypeKey string `json:"activity_type_key"`
			} `json:"attributes"`
		} `json:"data"`
	}
	target := workspace + "/members/" + url.PathEscape(member.Data.ID) + "/activities"
	if err := o.get(ctx, target, headers, &activities); err != nil {
		return false, err
	}
	for _, a := range activities.Data {
		if a.Attributes.ActivityTypeKey == event.Type() {
			return true, nil
		}
	}
	return false, nil
}

func (o *Orbit) get(ctx context.Context, target string, headers map[string]string, out any) error {
	resp, err := o.call(ctx, &adapters.HTTPRequest{Method: http.MethodGet, URL: target, Headers: headers})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", target, err)
	}
	return nil
}

func (o *Orbit) properties(props map[string]any) map[string]any {
	out := maps.Clone(props)
	if out == nil {
		out = make(map[string]any)
	}
	delete(out, "email")
	delete(out, "tags")
	delete(out, "description")
	if o.dataOrigin != "" {
		out["data_origin"] = o.dataOrigin
	}
	return out
}

// orbitTags normalises the tags prop into Orbit's comma separated form.
func orbitTags(v any) string {
	var tags []string
	switch t := v.(type) {
	case string:
		tags = strings.Split(t, ",")
	case []string:
		tags = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
	}

	clean := tags[:0:0]
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			clean = append(clean, tag)
		}
	}
	return strings.Join(clean, ",")
}
