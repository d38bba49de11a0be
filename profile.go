package tutanotacli

// Profile is the account-level information the "profile" command reports.
type Profile struct {
	Email       string
	UserID      string
	MailGroupID string
}
