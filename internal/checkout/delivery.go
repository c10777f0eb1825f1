package checkout

import (
	"regexp"
	"strings"

	"storefront/internal/identity"
	"storefront/internal/model"
)

// Field error messages.
const (
	MsgNameRequired    = "Name is required"
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Invalid email address"
	MsgPhoneRequired   = "Phone number is required"
	MsgPhoneLength     = "Phone number must be exactly 10 digits"
	MsgAddressRequired = "Delivery address is required"
)

const phoneDigits = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a delivery field name to its error message.
type FieldErrors map[string]string

// Attempt is one pass through the checkout dialog.
type Attempt struct {
	state       State
	identity    identity.Identity
	info        model.DeliveryInfo
	nameLocked  bool
	emailLocked bool
}

// NewAttempt opens an attempt for who. A name or email carried by a signed-in
// identity is read-only; the profile fills every field the identity leaves open.
func NewAttempt(who identity.Identity, profile *model.DeliveryInfo) (*Attempt, error) {
	a := &Attempt{state: StateIdle, identity: who}
	a.lockAccountFields()
	if err := a.advance(EventBegin); err != nil {
		return nil, err
	}

	a.info.Name = who.Name
	a.info.Email = who.Email

	if profile != nil {
		if !a.nameLocked && profile.Name != "" {
			a.info.Name = profile.Name
		}
		if !a.emailLocked && profile.Email != "" {
			a.info.Email = profile.Email
		}
		a.SetPhone(profile.Phone)
		a.info.Address = profile.Address
	}

	return a, nil
}

func (a *Attempt) lockAccountFields() {
	signedIn := !a.identity.IsGuest()
	a.nameLocked = signedIn && a.identity.Name != ""
	a.emailLocked = signedIn && a.identity.Email != ""
}

// State returns the current state of the attempt.
func (a *Attempt) State() State {
	return a.state
}

// Identity returns who the attempt belongs to.
func (a *Attempt) Identity() identity.Identity {
	return a.identity
}

// DeliveryInfo returns the delivery details entered so far.
func (a *Attempt) DeliveryInfo() model.DeliveryInfo {
	return a.info
}

// NameReadOnly reports whether the name comes from the account.
func (a *Attempt) NameReadOnly() bool {
	return a.nameLocked
}

// EmailReadOnly reports whether the email comes from the account.
func (a *Attempt) EmailReadOnly() bool {
	return a.emailLocked
}

// NameEmailReadOnly reports whether both name and email come from the account.
func (a *Attempt) NameEmailReadOnly() bool {
	return a.nameLocked && a.emailLocked
}

// SetName sets the customer name unless the account supplies it.
func (a *Attempt) SetName(name string) error {
	if a.nameLocked {
		return model.ErrReadOnlyField
	}
	a.info.Name = name
	return nil
}

// SetEmail sets the customer email unless the account supplies it.
func (a *Attempt) SetEmail(email string) error {
	if a.emailLocked {
		return model.ErrReadOnlyField
	}
	a.info.Email = email
	return nil
}

// SetPhone keeps the digits of value. Input with more than ten digits is
// ignored and the previous number stays, the way the dialog field behaves
// while typing.
func (a *Attempt) SetPhone(value string) {
	digits := phoneDigitsOf(value)
	if len(digits) <= phoneDigits {
		a.info.Phone = digits
	}
}

// SubmitPhone stores every digit of a submitted value so that Validate
// reports a number of the wrong length instead of dropping it.
func (a *Attempt) SubmitPhone(value string) {
	a.info.Phone = phoneDigitsOf(value)
}

func phoneDigitsOf(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

// SetAddress sets the delivery address.
func (a *Attempt) SetAddress(address string) {
	a.info.Address = address
}

// Validate checks the delivery details against the cart. It never touches
// the network. An empty cart yields model.ErrCartEmpty; invalid fields
// yield model.ErrValidationFailed together with the per-field messages.
func (a *Attempt) Validate(c model.Cart) (FieldErrors, error) {
	if c.IsEmpty() {
		return nil, model.ErrCartEmpty
	}

	errs := validateDeliveryInfo(a.info)
	if len(errs) > 0 {
		return errs, model.ErrValidationFailed
	}
	return nil, nil
}

func validateDeliveryInfo(info model.DeliveryInfo) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(info.Name) == "" {
		errs["name"] = MsgNameRequired
	}

	if strings.TrimSpace(info.Email) == "" {
		errs["email"] = MsgEmailRequired
	} else if !emailPattern.MatchString(info.Email) {
		errs["email"] = MsgEmailInvalid
	}

	if strings.TrimSpace(info.Phone) == "" {
		errs["phone"] = MsgPhoneRequired
	} else if len(info.Phone) != phoneDigits {
		errs["phone"] = MsgPhoneLength
	}

	if strings.TrimSpace(info.Address) == "" {
		errs["address"] = MsgAddressRequired
	}

	return errs
}

func (a *Attempt) advance(e Event) error {
	next, err := Transition(a.state, e)
	if err != nil {
		return err
	}
	a.state = next
	return nil
}
