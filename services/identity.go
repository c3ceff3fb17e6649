package services

import (
	"fmt"
	"strings"

	"github.com/badoux/checkmail"

	"prizewheel/models"
)

// Identity is the set of signals a participant presents; any field may be empty
type Identity struct {
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	IP                string `json:"ip,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
}

// DimensionValue is one present identity signal
type DimensionValue struct {
	Dimension string
	Value     string
}

// Normalize trims every signal, lower-cases the email and checks its syntax
func (i Identity) Normalize() (Identity, error) {
	out := Identity{
		Email:             strings.ToLower(strings.TrimSpace(i.Email)),
		Phone:             normalizePhone(i.Phone),
		IP:                strings.TrimSpace(i.IP),
		DeviceFingerprint: strings.TrimSpace(i.DeviceFingerprint),
	}
	if out.Email != "" {
		if err := checkmail.ValidateFormat(out.Email); err != nil {
			return Identity{}, fmt.Errorf("%w: email %q", ErrInvalidIdentity, out.Email)
		}
	}
	return out, nil
}

// Values lists the present signals in evaluation order
func (i Identity) Values() []DimensionValue {
	var values []DimensionValue
	if i.Email != "" {
		values = append(values, DimensionValue{models.DimensionEmail, i.Email})
	}
	if i.Phone != "" {
		values = append(values, DimensionValue{models.DimensionPhone, i.Phone})
	}
	if i.IP != "" {
		values = append(values, DimensionValue{models.DimensionIP, i.IP})
	}
	if i.DeviceFingerprint != "" {
		values = append(values, DimensionValue{models.DimensionDevice, i.DeviceFingerprint})
	}
	return values
}

// Value returns the signal for one dimension
func (i Identity) Value(dimension string) string {
	switch dimension {
	case models.DimensionEmail:
		return i.Email
	case models.DimensionPhone:
		return i.Phone
	case models.DimensionIP:
		return i.IP
	case models.DimensionDevice:
		return i.DeviceFingerprint
	}
	return ""
}

// normalizePhone keeps digits and a leading plus sign
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for idx, r := range phone {
		if r >= '0' && r <= '9' || (r == '+' && idx == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
