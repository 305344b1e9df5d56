package main

import (
	"strings"
	"sync"
)

// Network describes one chain the wallet can bind sessions to.
type Network struct {
	ChainID int64  `json:"chain_id"`
	Name    string `json:"name"`
	// Programmable is false for Bitcoin-style networks. Sessions bound to
	// a non-programmable network ignore handshake/call/update traffic; the
	// protocol layer only serves contract-capable chains.
	Programmable bool `json:"programmable"`
}

// Account is a wallet account as exposed to dapps and the UI.
type Account struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	AddressC   string `json:"addressC"`
	AddressBTC string `json:"addressBTC,omitempty"`
	Active     bool   `json:"active"`
}

// AccountService is the wallet's view of its accounts and the currently
// selected account/network. Account derivation itself lives outside the
// protocol layer; this service only answers reads and switches the active
// selection.
type AccountService struct {
	mu          sync.RWMutex
	accounts    []Account
	activeIndex int
	network     Network
	networks    map[int64]Network
}

// NewAccountService creates the service with a fixed account list and the
// known network set. The first account and the given network start active.
func NewAccountService(accounts []Account, networks []Network, activeChainID int64) *AccountService {
	byID := make(map[int64]Network, len(networks))
	for _, n := range networks {
		byID[n.ChainID] = n
	}

	s := &AccountService{
		accounts: accounts,
		networks: byID,
		network:  byID[activeChainID],
	}
	s.markActive()
	return s
}

// Accounts returns a copy of the account list with the active flag set.
func (s *AccountService) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// ActiveAccount returns the currently selected account.
func (s *AccountService) ActiveAccount() Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accounts[s.activeIndex]
}

// SelectAccount switches the active account by index.
func (s *AccountService) SelectAccount(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.accounts) {
		return RPCErrorf("account not found: %d", index)
	}

	s.activeIndex = index
	s.markActiveLocked()
	return nil
}

// AccountByAddress resolves an account by its C-chain address,
// case-insensitively.
func (s *AccountService) AccountByAddress(address string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.AddressC, address) {
			return a, true
		}
	}
	return Account{}, false
}

// ActiveNetwork returns the currently selected network.
func (s *AccountService) ActiveNetwork() Network {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.network
}

// Network resolves a known network by chain id. Unknown ids resolve to a
// programmable placeholder so that restored sessions on since-removed
// chains still function.
func (s *AccountService) Network(chainID int64) Network {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n, ok := s.networks[chainID]; ok {
		return n
	}
	return Network{ChainID: chainID, Name: "unknown", Programmable: true}
}

// SetActiveNetwork switches the active network by chain id.
func (s *AccountService) SetActiveNetwork(chainID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.networks[chainID]
	if !ok {
		return RPCErrorf("unsupported chain id: %d", chainID)
	}
	s.network = n
	return nil
}

func (s *AccountService) markActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markActiveLocked()
}

func (s *AccountService) markActiveLocked() {
	for i := range s.accounts {
		s.accounts[i].Active = i == s.activeIndex
	}
}
