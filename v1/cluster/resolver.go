package cluster

import (
	"fmt"
	"strings"
)

// ResolveByURISubstring returns the single peer whose URI contains substring.
func ResolveByURISubstring(substring string, snap *Snapshot) (PeerID, error) {
	if substring == "" {
		return 0, fmt.Errorf("%w: empty uri substring", ErrInvalidPeerSelector)
	}

	var matches []Peer
	for _, p := range snap.peers {
		if strings.Contains(p.URI, substring) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: no peer uri contains %q", ErrPeerNotFound, substring)
	case 1:
		return matches[0].ID, nil
	default:
		uris := make([]string, len(matches))
		for i, p := range matches {
			uris[i] = p.URI
		}
		return 0, fmt.Errorf("%w: %q matches %d peers (%s)", ErrAmbiguousPeerSelector, substring, len(matches), strings.Join(uris, ", "))
	}
}

// ResolveByID checks that a peer with the given id is part of the snapshot.
func ResolveByID(id PeerID, snap *Snapshot) (PeerID, error) {
	if _, ok := snap.Peer(id); !ok {
		return 0, fmt.Errorf("%w: peer %d", ErrPeerNotFound, id)
	}
	return id, nil
}

type peerSelectorKind int

const (
	peerSelectorNone peerSelectorKind = iota
	peerSelectorByID
	peerSelectorByURI
)

// PeerSelector names a peer either by id or by a URI substring.
// The zero value selects nothing and fails validation.
type PeerSelector struct {
	kind peerSelectorKind
	id   PeerID
	uri  string
}

// PeerByID selects the peer with the given id.
func PeerByID(id PeerID) PeerSelector {
	return PeerSelector{kind: peerSelectorByID, id: id}
}

// PeerByURI selects the single peer whose URI contains substring.
func PeerByURI(substring string) PeerSelector {
	return PeerSelector{kind: peerSelectorByURI, uri: substring}
}

// Validate reports selectors that can never resolve, without a snapshot.
func (s PeerSelector) Validate() error {
	switch s.kind {
	case peerSelectorByID:
		return nil
	case peerSelectorByURI:
		if strings.TrimSpace(s.uri) == "" {
			return fmt.Errorf("%w: empty uri substring", ErrInvalidPeerSelector)
		}
		return nil
	case peerSelectorNone:
		return fmt.Errorf("%w: no peer selected", ErrInvalidPeerSelector)
	default:
		return fmt.Errorf("%w: unknown selector kind %d", ErrInvalidPeerSelector, s.kind)
	}
}

// Resolve maps the selector to a peer id of snap.
func (s PeerSelector) Resolve(snap *Snapshot) (PeerID, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	switch s.kind {
	case peerSelectorByID:
		return ResolveByID(s.id, snap)
	case peerSelectorByURI:
		return ResolveByURISubstring(s.uri, snap)
	default:
		return 0, fmt.Errorf("%w: unknown selector kind %d", ErrInvalidPeerSelector, s.kind)
	}
}

func (s PeerSelector) String() string {
	switch s.kind {
	case peerSelectorByID:
		return fmt.Sprintf("peer %d", s.id)
	case peerSelectorByURI:
		return fmt.Sprintf("peer uri ~ %q", s.uri)
	default:
		return "no peer"
	}
}
