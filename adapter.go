package analytics

import "context"

// Adapter is implemented by every backend integration.
type Adapter interface {
	// Name returns the stable backend identifier, e.g. "GoogleAnalytics".
	Name() string

	// Enable opens the gate.
	Enable()

	// Disable closes the gate. While closed CreateEvent returns false
	// without touching the network.
	Disable()

	// Enabled reports whether the gate is open.
	Enabled() bool

	// CreateEvent translates event into the backend's wire shape and sends it.
	//
	// It returns (false, nil) when the adapter is disabled, (false, err)
	// when the event lacks a field the backend requires (ErrInvalidEvent)
	// or the request could not be dispatched (*TransportError), and
	// (true, nil) once the request was sent. The HTTP status of the reply
	// is not inspected.
	CreateEvent(ctx context.Context, event *Event) (bool, error)
}

// Validator is implemented by backends that can confirm an event was
// accepted on their side.
type Validator interface {
	// Validate returns (false, nil) when the adapter is disabled.
	Validate(ctx context.Context, event *Event) (bool, error)
}

// Contact is a CRM person record.
type Contact struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// Account is a CRM organisation record.
type Account struct {
	Name    string
	URL     string
	OwnerID int
	Fields  []AccountField
}

// AccountField is a custom account field value keyed by the backend's field ID.
type AccountField struct {
	FieldID int
	Value   string
}

// ContactManager manages CRM contacts. Calls on a disabled adapter return ErrDisabled.
type ContactManager interface {
	FindContact(ctx context.Context, email string) (int, error)
	CreateContact(ctx context.Context, contact Contact) error
	UpdateContact(ctx context.Context, id int, contact Contact) error
	DeleteContact(ctx context.Context, email string) error
}

// AccountManager manages CRM accounts and their links to contacts.
type AccountManager interface {
	FindAccount(ctx context.Context, name string) (int, error)
	CreateAccount(ctx context.Context, account Account) error
	UpdateAccount(ctx context.Context, id int, account Account) error
	DeleteAccount(ctx context.Context, id int) error
	// SyncAssociation links a contact to an account with the given role,
	// updating the role when the link already exists.
	SyncAssociation(ctx context.Context, accountID, contactID int, role string) error
}

// ProfileManager sets properties on a backend-side user profile.
type ProfileManager interface {
	SetProfile(ctx context.Context, distinctID, ip string, props map[string]any) error
}
