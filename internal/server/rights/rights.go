// Package rights defines the fixed capability vocabulary and the conjunctive
// authorization check applied to every protected operation.
package rights

// Capability tokens. The vocabulary is closed: accounts may only carry
// rights listed here.
const (
	ViewRecords      = "view-records"
	CreateRecord     = "create-record"
	EditRecord       = "edit-record"
	DeleteRecord     = "delete-record"
	ResetPassword    = "reset-password"
	ManageUsers      = "manage-users"
	ManageRiders     = "manage-riders"
	ManageHorses     = "manage-horses"
	ManageWebsite    = "manage-website"
	ManageLeadership = "manage-leadership"
	ManageClinic     = "manage-clinic"
)

var all = map[string]struct{}{
	ViewRecords:      {},
	CreateRecord:     {},
	EditRecord:       {},
	DeleteRecord:     {},
	ResetPassword:    {},
	ManageUsers:      {},
	ManageRiders:     {},
	ManageHorses:     {},
	ManageWebsite:    {},
	ManageLeadership: {},
	ManageClinic:     {},
}

// All returns every known capability token.
func All() []string {
	return []string{
		ViewRecords, CreateRecord, EditRecord, DeleteRecord, ResetPassword,
		ManageUsers, ManageRiders, ManageHorses, ManageWebsite,
		ManageLeadership, ManageClinic,
	}
}

// Valid reports whether r belongs to the capability vocabulary.
func Valid(r string) bool {
	_, ok := all[r]
	return ok
}

// Default is the capability set assigned to accounts created without an
// explicit rights list.
func Default() []string {
	return []string{ViewRecords}
}

// Missing returns the elements of required absent from have, preserving
// order. Authorization is conjunctive: a non-empty result denies the whole
// request.
func Missing(have, required []string) []string {
	held := make(map[string]struct{}, len(have))
	for _, r := range have {
		held[r] = struct{}{}
	}

	var missing []string
	for _, r := range required {
		if _, ok := held[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// HasAll reports whether have contains every element of required.
func HasAll(have, required []string) bool {
	return len(Missing(have, required)) == 0
}
