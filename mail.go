package tutanotacli

// Mail is a decrypted mail header. Message bodies and attachments are
// out of scope; only the id and the decrypted subject are surfaced.
type Mail struct {
	ID      string
	Subject string
}
