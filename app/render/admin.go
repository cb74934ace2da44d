package render

import "inkwell/app/models"

// Admin page bodies. Error and Flash are shown above the page content.

type DashboardView struct {
	Posts          []models.Post
	SyncConfigured bool
	Flash          string
	Error          string
}

// EditorView backs the post form. Tags are the current chips; TagInput is
// the uncommitted text of the tag field.
type EditorView struct {
	Post           models.Post
	Tags           []string
	TagInput       string
	IsNew          bool
	SyncConfigured bool
	Field          string
	Error          string
}

type SettingsView struct {
	Settings models.SiteSettings
	Theme    models.ThemeConfig
	Flash    string
	Error    string
}

type FriendsView struct {
	Links []models.FriendLink
	Draft models.FriendLink
	Flash string
	Error string
}

type DataView struct {
	SyncConfigured bool
	Flash          string
	Error          string
}

type LoginView struct {
	Username string
	Remember bool
	Error    string
}

type SetupView struct {
	Username string
	Error    string
}

type PasswordView struct {
	Flash string
	Error string
}

// ConfirmView is a yes/no gate. Submitting posts Fields plus confirm=yes
// to Action; declining follows Cancel. Option, when set, labels a sync=yes
// checkbox.
type ConfirmView struct {
	Title   string
	Message string
	Action  string
	Cancel  string
	Option  string
	Fields  map[string]string
}

// SyncLine is one line of a repository sync report.
type SyncLine struct {
	Name  string
	OK    bool
	Error string
}

type SyncReportView struct {
	Title string
	Lines []SyncLine
	Error string
}
