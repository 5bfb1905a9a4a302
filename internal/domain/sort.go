package domain

import (
	"sort"
	"strings"
	"time"
)

// SortState is a (key, direction) pair driving the admin table ordering.
// The zero value sorts by createdAt ascending.
type SortState struct {
	Key  string
	Desc bool
}

// Toggle returns the state after clicking the column header for key: the
// same key flips ascending to descending, any other key starts ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && !s.Desc {
		return SortState{Key: key, Desc: true}
	}
	return SortState{Key: key, Desc: false}
}

// SortApplications returns a new slice ordered by the given state. The input
// is never mutated and equal keys keep their relative input order, so the
// result is a derived view of the stored list.
func SortApplications(apps []Application, state SortState) []Application {
	out := make([]Application, len(apps))
	copy(out, apps)

	var less func(a, b Application) bool
	switch state.Key {
	case "workers":
		less = func(a, b Application) bool {
			return len(a.Workers) < len(b.Workers)
		}
	case "createdAt":
		less = func(a, b Application) bool {
			return parseCreatedAt(a.CreatedAt).Before(parseCreatedAt(b.CreatedAt))
		}
	default:
		key := state.Key
		less = func(a, b Application) bool {
			return strings.ToLower(textField(a, key)) < strings.ToLower(textField(b, key))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if state.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// parseCreatedAt treats unparseable or missing timestamps as epoch zero so
// they sort before everything else.
func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func textField(app Application, key string) string {
	switch key {
	case "applicant":
		return app.Applicant
	case "phone":
		return app.Phone
	case "vendor_name":
		return app.VendorName
	case "vendor_rep":
		return app.VendorRep
	case "contact_person":
		return app.ContactPerson
	case "ownerName":
		return app.OwnerName
	case "status":
		return app.Status
	default:
		return ""
	}
}
