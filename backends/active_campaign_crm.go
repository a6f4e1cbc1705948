package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/adapters"
)

type acRecord struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type acContact struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type acAccountField struct {
	CustomFieldID int    `json:"customFieldId"`
	FieldValue    string `json:"fieldValue"`
}

type acAccount struct {
	Name       string           `json:"name"`
	AccountURL string           `json:"accountUrl,omitempty"`
	Owner      int              `json:"owner,omitempty"`
	Fields     []acAccountField `json:"fields,omitempty"`
}

type acAccountContact struct {
	Contact  int    `json:"contact,omitempty"`
	Account  int    `json:"account,omitempty"`
	JobTitle string `json:"jobTitle"`
}

func toACContact(c analytics.Contact) acContact {
	return acContact{Email: c.Email, FirstName: c.FirstName, LastName: c.LastName, Phone: c.Phone}
}

func toACAccount(a analytics.Account) acAccount {
	out := acAccount{Name: a.Name, AccountURL: a.URL, Owner: a.OwnerID}
	for _, f := range a.Fields {
		out.Fields = append(out.Fields, acAccountField{CustomFieldID: f.FieldID, FieldValue: f.Value})
	}
	return out
}

// crm performs one CRM API call and decodes the reply into out when set.
func (a *ActiveCampaign) crm(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if !a.Enabled() {
		return analytics.ErrDisabled
	}

	target := strings.TrimRight(a.crmEndpoint, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
	}

	resp, err := a.call(ctx, &adapters.HTTPRequest{
		Method:  method,
		URL:     target,
		Headers: jsonHeaders(map[string]string{"Api-Token": a.apiKey}),
		Body:    body,
	})
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unexpected record id %q: %w", s, err)
	}
	return id, nil
}

// FindContact returns the ID of the contact with the given email.
func (a *ActiveCampaign) FindContact(ctx context.Context, email string) (int, error) {
	var result struct {
		Contacts []acRecord `json:"contacts"`
	}
	if err := a.crm(ctx, http.MethodGet, "/contacts", url.Values{"email": {email}}, nil, &result); err != nil {
		return 0, err
	}
	if len(result.Contacts) == 0 {
		return 0, fmt.Errorf("%w: contact %s", analytics.ErrNotFound, email)
	}
	return parseID(result.Contacts[0].ID)
}

func (a *ActiveCampaign) CreateContact(ctx context.Context, contact analytics.Contact) error {
	if !a.Enabled() {
		return analytics.ErrDisabled
	}
	if contact.Email == "" {
		return a.require("email")
	}
	in := map[string]acContact{"contact": toACContact(contact)}
	return a.crm(ctx, http.MethodPost, "/contacts", nil, in, nil)
}

func (a *ActiveCampaign) UpdateContact(ctx context.Context, id int, contact analytics.Contact) error {
	in := map[string]acContact{"contact": toACContact(contact)}
	return a.crm(ctx, http.MethodPut, "/contacts/"+strconv.Itoa(id), nil, in, nil)
}

// DeleteContact looks the contact up by email and deletes it.
func (a *ActiveCampaign) DeleteContact(ctx context.Context, email string) error {
	id, err := a.FindContact(ctx, email)
	if err != nil {
		return err
	}
	return a.crm(ctx, http.MethodDelete, "/contacts/"+strconv.Itoa(id), nil, nil, nil)
}

// FindAccount returns the ID of the account named name. The search API
// matches substrings, so only a case-insensitive exact name match counts.
func (a *ActiveCampaign) FindAccount(ctx context.Context, name string) (int, error) {
	var result struct {
		Accounts []acRecord `json:"accounts"`
	}
	if err := a.crm(ctx, http.MethodGet, "/accounts", url.Values{"search": {name}}, nil, &result); err != nil {
		return 0, err
	}
	for _, acct := range result.Accounts {
		if strings.EqualFold(acct.Name, name) {
			return parseID(acct.ID)
		}
	}
	return 0, fmt.Errorf("%w: account %s", analytics.ErrNotFound, name)
}

func (a *ActiveCampaign) CreateAccount(ctx context.Context, account analytics.Account) error {
	if !a.Enabled() {
		return analytics.ErrDisabled
	}
	if account.Name == "" {
		return a.require("name")
	}
	in := map[string]acAccount{"account": toACAccount(account)}
	return a.crm(ctx, http.MethodPost, "/accounts", nil, in, nil)
}

func (a *ActiveCampaign) UpdateAccount(ctx context.Context, id int, account analytics.Account) error {
	in := map[string]acAccount{"account": toACAccount(account)}
	return a.crm(ctx, http.MethodPut, "/accounts/"+strconv.Itoa(id), nil, in, nil)
}

func (a *ActiveCampaign) DeleteAccount(ctx context.Context, id int) error {
	return a.crm(ctx, http.MethodDelete, "/accounts/"+strconv.Itoa(id), nil, nil, nil)
}

// SyncAssociation sets the contact's job title on the account, creating the
// association when it does not exist yet.
func (a *ActiveCampaign) SyncAssociation(ctx context.Context, accountID, contactID int, role string) error {
	query := url.Values{
		"filters[account]": {strconv.Itoa(accountID)},
		"filters[contact]": {strconv.Itoa(contactID)},
	}
	var existing struct {
		AccountContacts []acRecord `json:"accountContacts"`
	}
	if err := a.crm(ctx, http.MethodGet, "/accountContacts", query, nil, &existing); err != nil {
		return err
	}

	if len(existing.AccountContacts) > 0 {
		in := map[string]acAccountContact{"accountContact": {JobTitle: role}}
		return a.crm(ctx, http.MethodPut, "/accountContacts/"+existing.AccountContacts[0].ID, nil, in, nil)
	}

	in := map[string]acAccountContact{"accountContact": {
		Contact:  contactID,
		Account:  accountID,
		JobTitle: role,
	}}
	return a.crm(ctx, http.MethodPost, "/accountContacts", nil, in, nil)
}
