package web

import (
	"fmt"
	"time"

	vm "github.com/ericfisherdev/studydigest/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/studydigest/internal/domain/model"
)

// toCredentialRowViewModel converts a masked credential view into a table row.
// now anchors the relative "last used" text and the cool-down check.
func toCredentialRowViewModel(c model.CredentialView, now time.Time) vm.CredentialRowViewModel {
	row := vm.CredentialRowViewModel{
		ID:            c.ID,
		Provider:      c.Provider,
		MaskedKey:     c.MaskedKey,
		FailCount:     c.FailCount,
		LastUsed:      "never",
		Active:        c.Active,
		DeactivateURL: "/credentials/" + c.ID + "/deactivate",
		ReactivateURL: "/credentials/" + c.ID + "/reactivate",
		DeleteURL:     "/credentials/" + c.ID + "/delete",
	}

	if c.LastUsedAt != nil {
		row.LastUsed = relativeTime(*c.LastUsedAt, now)
	}
	if c.DisabledUntil != nil && c.DisabledUntil.After(now) {
		row.DisabledUntil = c.DisabledUntil.UTC().Format("2006-01-02 15:04 UTC")
	}

	switch {
	case c.Unreadable:
		row.Status, row.StatusClass = "unreadable", "status-error"
	case !c.Active:
		row.Status, row.StatusClass = "inactive", "status-muted"
	case !c.Usable:
		row.Status, row.StatusClass = "cooling down", "status-warning"
	default:
		row.Status, row.StatusClass = "active", "status-ok"
	}

	return row
}

func toCredentialsPageViewModel(views []model.CredentialView, now time.Time) vm.CredentialsPageViewModel {
	page := vm.CredentialsPageViewModel{
		Credentials: make([]vm.CredentialRowViewModel, 0, len(views)),
	}
	for _, v := range views {
		page.Credentials = append(page.Credentials, toCredentialRowViewModel(v, now))
		if v.Usable && !v.Unreadable {
			page.UsableCount++
		}
	}
	return page
}

func detailOptions(selected model.DetailLevel) []vm.DetailOption {
	levels := []struct {
		level model.DetailLevel
		label string
	}{
		{model.DetailBrief, "Brief"},
		{model.DetailStandard, "Standard"},
		{model.DetailDetailed, "Detailed"},
	}

	opts := make([]vm.DetailOption, 0, len(levels))
	for _, l := range levels {
		opts = append(opts, vm.DetailOption{
			Value:    string(l.level),
			Label:    l.label,
			Selected: l.level == selected,
		})
	}
	return opts
}

// relativeTime renders t relative to now at minute, hour or day granularity.
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
