package dkg

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/celo-org/celo-threshold-bls-go/aead"
	"github.com/celo-org/celo-threshold-bls-go/curve"
	"github.com/celo-org/celo-threshold-bls-go/party"
	"github.com/celo-org/celo-threshold-bls-go/poly"
	"github.com/celo-org/celo-threshold-bls-go/status"
	"github.com/celo-org/celo-threshold-bls-go/xlog"
)

// Config bundles the inputs a participant needs to start a fresh DKG run:
// the group it belongs to, the curve backend, and its own long-term key
// pair. Log receives per-item diagnostics (a bad ciphertext, a missing
// bundle) that never escalate to a returned error; it defaults to a no-op
// logger when nil.
type Config struct {
	Group     *party.Group
	Curve     curve.Curve
	Long      curve.Scalar
	Pub       curve.Point
	Rand      io.Reader
	Log       xlog.Logger
	SessionID uuid.UUID
}

func (c Config) selfIndex() (Idx, error) {
	idx, ok := c.Group.Index(c.Pub)
	if !ok {
		return 0, ErrPublicKeyNotFound
	}
	return idx, nil
}

func (c Config) logger() xlog.Logger {
	if c.Log == nil {
		return xlog.Noop()
	}
	return c.Log
}

// Phase0 is a participant's state before it has dealt its shares.
type Phase0 struct {
	cfg  Config
	self Idx
	f    *poly.PriPoly
}

// NewPhase0 initializes a fresh joint-Feldman DKG run: it samples a secret
// polynomial of degree Threshold-1 and locates the caller's own index in
// the group.
func NewPhase0(cfg Config) (*Phase0, error) {
	self, err := cfg.selfIndex()
	if err != nil {
		return nil, err
	}
	f := poly.NewPriPoly(cfg.Curve, cfg.Group.Threshold-1, nil, cfg.Rand)
	return &Phase0{cfg: cfg, self: self, f: f}, nil
}

// EncryptShares computes and encrypts this participant's share for every
// other holder (spec §4.5 Phase 0), producing the bundle to publish and
// the next phase's state. The self-dealing diagonal share is never
// encrypted or published (spec §9).
func (p *Phase0) EncryptShares() (*BundledShares, *Phase1, error) {
	public := p.f.Commit(p.cfg.Curve)
	shares := make([]EncryptedShare, 0, p.cfg.Group.Len()-1)
	var errs *multierror.Error
	for _, n := range p.cfg.Group.Nodes {
		if n.Index == p.self {
			continue
		}
		s := p.f.Eval(n.Index)
		plain, err := s.V.MarshalBinary()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("holder %d: %w", n.Index, err))
			continue
		}
		ct, err := aead.Encrypt(p.cfg.Curve, nil, n.Key, plain, p.cfg.Rand)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("holder %d: %w", n.Index, err))
			continue
		}
		shares = append(shares, EncryptedShare{ShareIdx: n.Index, Secret: ct})
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, nil, err
	}

	bundle := &BundledShares{SessionID: p.cfg.SessionID, DealerIdx: p.self, Shares: shares, Public: public}
	own := p.f.Eval(p.self)
	next := &Phase1{
		cfg:        p.cfg,
		self:       p.self,
		f:          p.f,
		aggShare:   own.V,
		aggPublic:  public,
		publics:    map[Idx]*poly.PubPoly{p.self: public},
		n:          p.cfg.Group.Len(),
	}
	return bundle, next, nil
}

// Phase1 is a participant's state while awaiting peer deal bundles.
type Phase1 struct {
	cfg       Config
	self      Idx
	f         *poly.PriPoly
	aggShare  curve.Scalar
	aggPublic *poly.PubPoly
	publics   map[Idx]*poly.PubPoly
	n         int
}

// ProcessShares decrypts and validates peer bundles (spec §4.5 Phase 1),
// accumulating accepted shares and building the status matrix. It returns
// the response bundle to publish (possibly nil, if there is nothing to
// report and publishAll is false) along with the next phase's state.
func (p *Phase1) ProcessShares(bundles []*BundledShares, publishAll bool) (*BundledResponses, *Phase2, error) {
	matrix := status.NewFresh(p.n)
	// A holder only ever gossips complaints (spec §4.5 Phase 1): silence
	// about a dealer means acceptance. Pre-fill every column but our own
	// with Success so that default carries that convention; our own column
	// is populated below from direct verification, pessimistic until proven.
	for h := 0; h < p.n; h++ {
		if Idx(h) == p.self {
			continue
		}
		for d := 0; d < p.n; d++ {
			if err := matrix.Set(d, h, status.Success); err != nil {
				return nil, nil, err
			}
		}
	}
	aggShare := p.aggShare
	aggPublic := p.aggPublic
	publics := make(map[Idx]*poly.PubPoly, len(p.publics))
	for k, v := range p.publics {
		publics[k] = v
	}

	log := p.cfg.logger()
	validPeers := 0
	for _, b := range dedupSharesByDealer(sortBundledShares(bundles)) {
		if b.DealerIdx == p.self || int(b.DealerIdx) >= p.n {
			continue
		}
		if b.Public.Degree() != p.cfg.Group.Threshold-1 {
			log.Warnw("rejecting dealer bundle: wrong degree", "dealer", b.DealerIdx, "degree", b.Public.Degree())
			continue
		}
		// Kept even if our share from this dealer fails below, so that a
		// justification it reveals for us in Phase 3 can be checked.
		publics[b.DealerIdx] = b.Public
		es, ok := findShareFor(b.Shares, p.self)
		if !ok {
			log.Warnw("rejecting dealer bundle: no share for self", "dealer", b.DealerIdx)
			continue
		}
		plain, err := aead.Decrypt(p.cfg.Curve, nil, p.cfg.Long, es.Secret)
		if err != nil {
			log.Warnw("rejecting dealer share: decrypt failed", "dealer", b.DealerIdx, "err", err)
			continue
		}
		s := p.cfg.Curve.Scalar()
		if err := s.UnmarshalBinary(plain); err != nil {
			log.Warnw("rejecting dealer share: malformed scalar", "dealer", b.DealerIdx, "err", err)
			continue
		}
		if !shareCorrect(p.self, p.cfg.Curve, s, b.Public) {
			log.Warnw("rejecting dealer share: inconsistent with commitment", "dealer", b.DealerIdx)
			continue
		}
		if err := matrix.Set(int(b.DealerIdx), int(p.self), status.Success); err != nil {
			continue
		}
		aggShare = aggShare.Add(s)
		sum, err := aggPublic.Add(b.Public)
		if err != nil {
			return nil, nil, err
		}
		aggPublic = sum
		validPeers++
	}

	if need := p.cfg.Group.Threshold - 1; validPeers < need {
		return nil, nil, fmt.Errorf("%w: got %d, need %d", ErrNotEnoughValidShares, validPeers, p.cfg.Group.Threshold)
	}

	var responses []Response
	for d := 0; d < p.n; d++ {
		if Idx(d) == p.self {
			continue
		}
		st, err := matrix.Get(d, int(p.self))
		if err != nil {
			return nil, nil, err
		}
		if st == status.Success && !publishAll {
			continue
		}
		responses = append(responses, Response{DealerIdx: Idx(d), Status: st})
	}

	var bundle *BundledResponses
	if len(responses) > 0 {
		bundle = &BundledResponses{ShareIdx: p.self, Responses: responses}
	}

	next := &Phase2{
		cfg:       p.cfg,
		self:      p.self,
		f:         p.f,
		aggShare:  aggShare,
		aggPublic: aggPublic,
		publics:   publics,
		matrix:    matrix,
		n:         p.n,
	}
	return bundle, next, nil
}

// Phase2 is a participant's state while awaiting peer responses.
type Phase2 struct {
	cfg       Config
	self      Idx
	f         *poly.PriPoly
	aggShare  curve.Scalar
	aggPublic *poly.PubPoly
	publics   map[Idx]*poly.PubPoly
	matrix    *status.Matrix
	n         int
}

// ProcessResponses applies peer responses to the status matrix (spec §4.5
// Phase 2). If every row is already all-Success the output is final;
// otherwise it transitions to Phase 3, first revealing justifications for
// its own disputed cells if this participant was accused.
func (p *Phase2) ProcessResponses(responses []*BundledResponses) (*DKGOutput, *BundledJustification, *Phase3, error) {
	for _, b := range sortBundledResponses(responses) {
		if b.ShareIdx == p.self || int(b.ShareIdx) >= p.n {
			continue
		}
		for _, r := range b.Responses {
			if int(r.DealerIdx) >= p.n {
				continue
			}
			if err := p.matrix.Set(int(r.DealerIdx), int(b.ShareIdx), r.Status); err != nil {
				return nil, nil, nil, err
			}
		}
	}

	allGood := true
	for d := 0; d < p.n; d++ {
		ok, err := p.matrix.AllSuccess(d)
		if err != nil {
			return nil, nil, nil, err
		}
		if !ok {
			allGood = false
			break
		}
	}
	if allGood {
		out := &DKGOutput{
			QUAL:   p.cfg.Group,
			Public: p.aggPublic,
			Share:  &poly.PriShare{I: p.self, V: p.aggShare},
		}
		return out, nil, nil, nil
	}

	ownRow, err := p.matrix.Row(int(p.self))
	if err != nil {
		return nil, nil, nil, err
	}
	var justifs []Justification
	for h, st := range ownRow {
		if st == status.Complaint {
			justifs = append(justifs, Justification{ShareIdx: Idx(h), Share: p.f.Eval(Idx(h)).V})
		}
	}

	var bundle *BundledJustification
	if len(justifs) > 0 {
		bundle = &BundledJustification{DealerIdx: p.self, Justifications: justifs, Public: p.publics[p.self]}
	}

	next := &Phase3{
		cfg:       p.cfg,
		self:      p.self,
		aggShare:  p.aggShare,
		aggPublic: p.aggPublic,
		publics:   p.publics,
		matrix:    p.matrix,
		n:         p.n,
	}
	return nil, bundle, next, nil
}

// Phase3 is a participant's state while awaiting justifications.
type Phase3 struct {
	cfg       Config
	self      Idx
	aggShare  curve.Scalar
	aggPublic *poly.PubPoly
	publics   map[Idx]*poly.PubPoly
	matrix    *status.Matrix
	n         int
}

// ProcessJustifications verifies revealed shares against their dealer's
// public polynomial, determines QUAL, and assembles the final output
// (spec §4.5 Phase 3).
func (p *Phase3) ProcessJustifications(justifs []*BundledJustification) (*DKGOutput, error) {
	aggShare := p.aggShare
	aggPublic := p.aggPublic

	for _, b := range dedupJustifsByDealer(sortBundledJustifications(justifs)) {
		pub, ok := p.publics[b.DealerIdx]
		if !ok {
			continue
		}
		for _, j := range b.Justifications {
			if int(j.ShareIdx) >= p.n {
				continue
			}
			if !shareCorrect(j.ShareIdx, p.cfg.Curve, j.Share, pub) {
				continue
			}
			if err := p.matrix.Set(int(b.DealerIdx), int(j.ShareIdx), status.Success); err != nil {
				return nil, err
			}
			if j.ShareIdx == p.self {
				aggShare = aggShare.Add(j.Share)
				sum, err := aggPublic.Add(pub)
				if err != nil {
					return nil, err
				}
				aggPublic = sum
			}
		}
	}

	qualIdx := p.matrix.QUAL()
	if len(qualIdx) < p.cfg.Group.Threshold {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrNotEnoughJustifications, len(qualIdx), p.cfg.Group.Threshold)
	}

	qualSet := make(map[int]bool, len(qualIdx))
	for _, d := range qualIdx {
		qualSet[d] = true
	}
	qualNodes := make([]*party.Node, 0, len(qualIdx))
	for _, n := range p.cfg.Group.Nodes {
		if qualSet[int(n.Index)] {
			qualNodes = append(qualNodes, n)
		}
	}
	qualGroup, err := party.NewGroup(qualNodes, p.cfg.Group.Threshold)
	if err != nil {
		return nil, err
	}

	return &DKGOutput{
		QUAL:   qualGroup,
		Public: aggPublic,
		Share:  &poly.PriShare{I: p.self, V: aggShare},
	}, nil
}
