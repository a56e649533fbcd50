// Package keys derives the local store keys for chapters and custom chapter
// lists, and names the fixed catalog keys. Writers and readers must both go
// through these functions so the strings agree.
package keys

import "strings"

// Prefix marks every key that belongs to the application.
const Prefix = "nst_"

const (
	Users              = Prefix + "users"
	CurrentUser        = Prefix + "current_user"
	UserHistory        = Prefix + "user_history"
	SystemSettings     = Prefix + "system_settings"
	ActivityLog        = Prefix + "activity_log"
	RecycleBin         = Prefix + "recycle_bin"
	RecoveryRequests   = Prefix + "recovery_requests"
	DemandRequests     = Prefix + "demand_requests"
	AdminCodes         = Prefix + "admin_codes"
	CustomSubjectsPool = Prefix + "custom_subjects_pool"
	DataVersion        = Prefix + "data_version"
	GlobalMessage      = Prefix + "global_message"
	UniversalChat      = Prefix + "universal_chat"
)

// IsSenior reports whether class uses streams (11 and 12).
func IsSenior(class string) bool {
	return class == "11" || class == "12"
}

// StreamSuffix is "-<stream>" for senior classes and "" otherwise.
func StreamSuffix(class, stream string) string {
	if IsSenior(class) {
		return "-" + stream
	}
	return ""
}

// Content is the key of a chapter's ContentRecord:
// nst_content_<board>_<class><suffix>_<subject>_<chapterId>.
func Content(board, class, stream, subject, chapterID string) string {
	return Prefix + "content_" + board + "_" + class + StreamSuffix(class, stream) + "_" + subject + "_" + chapterID
}

// CustomChapters is the key of an admin-curated chapter list:
// nst_custom_chapters_<board>-<class><suffix>-<subject>-<language>.
func CustomChapters(board, class, stream, subject, language string) string {
	return Prefix + "custom_chapters_" + board + "-" + class + StreamSuffix(class, stream) + "-" + subject + "-" + language
}

// Owned reports whether key belongs to the application namespace.
func Owned(key string) bool {
	return strings.HasPrefix(key, Prefix)
}

// Preserved lists keys a snapshot restore carries over from the device.
var Preserved = []string{CurrentUser, UserHistory}
