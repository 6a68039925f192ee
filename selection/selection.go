package selection

import "github.com/safwentrabelsi/spl-approval-revoker/types"

// Set is an ordered set of tokens, unique by mint. It is not safe for concurrent use.
type Set struct {
	tokens []types.Token
}

func New() *Set {
	return &Set{}
}

// Toggle removes the token with the same mint if present, otherwise appends it.
func (s *Set) Toggle(token types.Token) {
	for i, t := range s.tokens {
		if t.Mint == token.Mint {
			s.tokens = append(s.tokens[:i:i], s.tokens[i+1:]...)
			return
		}
	}
	s.tokens = append(s.tokens, token)
}

// SelectAll replaces the set with all tokens when checked, and clears it otherwise.
func (s *Set) SelectAll(checked bool, tokens []types.Token) {
	if !checked {
		s.Clear()
		return
	}
	s.tokens = s.tokens[:0:0]
	for _, t := range tokens {
		if !s.Contains(t.Mint) {
			s.tokens = append(s.tokens, t)
		}
	}
}

func (s *Set) Contains(mint string) bool {
	for _, t := range s.tokens {
		if t.Mint == mint {
			return true
		}
	}
	return false
}

func (s *Set) Len() int {
	return len(s.tokens)
}

// Tokens returns a copy of the selection in selection order.
func (s *Set) Tokens() []types.Token {
	out := make([]types.Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Remove drops the tokens with the given mints and keeps the rest in order.
func (s *Set) Remove(mints ...string) {
	drop := make(map[string]bool, len(mints))
	for _, m := range mints {
		drop[m] = true
	}
	kept := s.tokens[:0:0]
	for _, t := range s.tokens {
		if !drop[t.Mint] {
			kept = append(kept, t)
		}
	}
	s.tokens = kept
}

func (s *Set) Clear() {
	s.tokens = nil
}

// Reconcile drops selected tokens whose mint is not in tokens and refreshes the
// kept entries with the new values. Selection order is preserved.
func (s *Set) Reconcile(tokens []types.Token) {
	byMint := make(map[string]types.Token, len(tokens))
	for _, t := range tokens {
		byMint[t.Mint] = t
	}
	kept := s.tokens[:0:0]
	for _, t := range s.tokens {
		if fresh, ok := byMint[t.Mint]; ok {
			kept = append(kept, fresh)
		}
	}
	s.tokens = kept
}
