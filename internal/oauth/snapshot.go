package oauth

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/airbytehq/oauthflow/internal/secret"
)

// SnapshotVersion is the current snapshot format.
const SnapshotVersion = 1

// Snapshot is the persisted form of a suspended flow. It holds the PKCE verifier and, after
// the redirect, the authorization code; both are written in cleartext by MarshalJSON and
// MarshalYAML so the store must protect the file. The client config is not included and
// must be supplied again to Restore.
type Snapshot struct {
	Version       int
	ID            string
	State         State
	ClientID      string
	RedirectURL   string
	PKCEMethod    Method
	CodeVerifier  *secret.Value
	CodeChallenge string
	CSRFState     CSRFState
	Code          *secret.Value
}

type snapshotWire struct {
	Version       int       `json:"version" yaml:"version"`
	ID            string    `json:"id" yaml:"id"`
	State         State     `json:"state" yaml:"state"`
	ClientID      string    `json:"client_id" yaml:"client_id"`
	RedirectURL   string    `json:"redirect_url" yaml:"redirect_url"`
	PKCEMethod    Method    `json:"pkce_method,omitempty" yaml:"pkce_method,omitempty"`
	CodeVerifier  string    `json:"code_verifier,omitempty" yaml:"code_verifier,omitempty"`
	CodeChallenge string    `json:"code_challenge,omitempty" yaml:"code_challenge,omitempty"`
	CSRFState     CSRFState `json:"csrf_state,omitempty" yaml:"csrf_state,omitempty"`
	Code          string    `json:"code,omitempty" yaml:"code,omitempty"`
}

func (s *Snapshot) wire() snapshotWire {
	return snapshotWire{
		Version:       s.Version,
		ID:            s.ID,
		State:         s.State,
		ClientID:      s.ClientID,
		RedirectURL:   s.RedirectURL,
		PKCEMethod:    s.PKCEMethod,
		CodeVerifier:  s.CodeVerifier.Reveal(),
		CodeChallenge: s.CodeChallenge,
		CSRFState:     s.CSRFState,
		Code:          s.Code.Reveal(),
	}
}

func (s *Snapshot) fromWire(w snapshotWire) {
	*s = Snapshot{
		Version:       w.Version,
		ID:            w.ID,
		State:         w.State,
		ClientID:      w.ClientID,
		RedirectURL:   w.RedirectURL,
		PKCEMethod:    w.PKCEMethod,
		CodeChallenge: w.CodeChallenge,
		CSRFState:     w.CSRFState,
	}
	if w.CodeVerifier != "" {
		s.CodeVerifier = secret.New(w.CodeVerifier)
	}
	if w.Code != "" {
		s.Code = secret.New(w.Code)
	}
}

// MarshalJSON implements json.Marshaler.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var w snapshotWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	s.fromWire(w)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s *Snapshot) MarshalYAML() (interface{}, error) {
	return s.wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Snapshot) UnmarshalYAML(node *yaml.Node) error {
	var w snapshotWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	s.fromWire(w)
	return nil
}

// Discard zeroes the secrets held by the snapshot.
func (s *Snapshot) Discard() {
	if s == nil {
		return
	}
	s.CodeVerifier.Discard()
	s.Code.Discard()
}

// Snapshot captures a suspended flow. Terminal flows cannot be captured.
func (f *Flow) Snapshot() (*Snapshot, error) {
	if f.state.Terminal() {
		return nil, &UsageError{Op: "snapshot", State: f.state}
	}

	s := &Snapshot{
		Version:     SnapshotVersion,
		ID:          f.id,
		State:       f.state,
		ClientID:    f.cfg.ClientID,
		RedirectURL: f.cfg.RedirectURL,
		PKCEMethod:  f.cfg.PKCEMethod,
	}
	if f.state == StateStart {
		return s, nil
	}

	s.CodeVerifier = f.pkce.Verifier().Clone()
	s.CodeChallenge = f.pkce.Challenge()
	s.PKCEMethod = f.pkce.Method()
	s.CSRFState = f.csrf
	if f.state == StateAwaitingTokenResponse {
		s.Code = f.tokenReq.Code.Clone()
	}
	return s, nil
}

// Restore rebuilds a flow from a snapshot. Resuming the restored flow behaves exactly as
// resuming the original would have. cfg must describe the same client the snapshot was
// taken for.
func Restore(cfg ClientConfig, s *Snapshot, opts ...Option) (*Flow, error) {
	if s == nil {
		return nil, &MissingParameterError{Name: "snapshot"}
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrInvalidConfig, s.Version)
	}
	if s.ID == "" {
		return nil, &MissingParameterError{Name: "id"}
	}
	if s.ClientID != cfg.ClientID || s.RedirectURL != cfg.RedirectURL {
		return nil, fmt.Errorf("%w: snapshot %s belongs to client %q with redirect %q", ErrInvalidConfig, s.ID, s.ClientID, s.RedirectURL)
	}

	f, err := NewFlow(cfg, append(slices.Clone(opts), WithID(s.ID))...)
	if err != nil {
		return nil, err
	}

	switch s.State {
	case StateStart:
		return f, nil
	case StateAwaitingRedirect, StateAwaitingAuthorizationResult, StateAwaitingTokenResponse:
	default:
		return nil, fmt.Errorf("%w: snapshot in state %s cannot be restored", ErrInvalidConfig, s.State)
	}

	method, err := ParseMethod(string(s.PKCEMethod))
	if err != nil {
		return nil, err
	}
	if method != f.cfg.PKCEMethod {
		return nil, fmt.Errorf("%w: snapshot %s uses method %s, client requires %s", ErrPKCEMismatch, s.ID, method, f.cfg.PKCEMethod)
	}
	if s.CodeVerifier.IsEmpty() {
		return nil, &MissingParameterError{Name: "code_verifier"}
	}
	var p *PKCEPair
	s.CodeVerifier.WithBytes(func(b []byte) {
		p, err = restorePKCEPair(string(b), s.CodeChallenge, method)
	})
	if err != nil {
		return nil, err
	}
	if err := s.CSRFState.validate(); err != nil {
		p.Discard()
		return nil, err
	}

	f.pkce = p
	f.csrf = s.CSRFState
	f.authReq = BuildAuthorizationRequest(f.cfg, f.pkce, f.csrf)

	if s.State == StateAwaitingTokenResponse {
		if s.Code.IsEmpty() {
			f.discard()
			return nil, &MissingParameterError{Name: "code"}
		}
		f.tokenReq = buildTokenRequest(f.cfg, s.Code.Clone(), f.pkce.Verifier().Clone())
	}

	f.state = s.State
	pterm.Debug.Printfln("flow %s: restored in state %s", f.id, f.state)
	return f, nil
}
