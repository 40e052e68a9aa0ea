package wallet

import "github.com/dmitrijs2005/podguild/internal/client/chain"

// Session is the unlocked wallet of the current user. A nil Session, or one
// without a signer, is "no active session".
type Session struct {
	Signer chain.Signer
}

func NewSession(s chain.Signer) *Session {
	return &Session{Signer: s}
}

func (s *Session) Active() bool {
	return s != nil && s.Signer != nil
}

// Address returns the session address, or "" when inactive.
func (s *Session) Address() string {
	if !s.Active() {
		return ""
	}
	return s.Signer.Address()
}
