package tutanotacli

import "github.com/digitalWestie/tutanota-cli/internal/mailbox"

// Folder is a decrypted mail folder (a MailSet), ready for display.
type Folder = mailbox.Folder
