package mailbox

import "strings"

// Folder is a decrypted MailSet ready for display.
type Folder struct {
	ID            string
	Name          string
	FolderType    int64
	EntriesListID string
}

// folderTypeNames is the fixed substitution table used when a folder's
// decrypted name is empty or whitespace.
var folderTypeNames = map[int64]string{
	1:  "Inbox",
	2:  "Sent",
	3:  "Trash",
	4:  "Archive",
	5:  "Spam",
	6:  "Draft",
	10: "Scheduled",
	8:  "Label (no name)",
	0:  "(no name)",
}

// DisplayName returns the decrypted name, or the folderType substitution
// when the decrypted name is empty or whitespace-only.
func DisplayName(decryptedName string, folderType int64) string {
	if strings.TrimSpace(decryptedName) != "" {
		return decryptedName
	}
	if name, ok := folderTypeNames[folderType]; ok {
		return name
	}
	return folderTypeNames[0]
}
