package core

// SessionID identifies one live connection. It is minted by the transport
// adapter per connection and never taken from the client.
type SessionID string
