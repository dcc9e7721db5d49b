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

// ReshareConfig bundles the inputs a participant needs to take part in a
// resharing run (spec §4.6): the previous committee's group and output, the
// new committee's group, and the caller's own long-term key. A participant
// may be a member of OldGroup, NewGroup, both, or neither.
type ReshareConfig struct {
	OldGroup   *party.Group
	NewGroup   *party.Group
	PrevPublic *poly.PubPoly
	PrevShare  *poly.PriShare // nil if this participant was not a dealer previously
	Curve      curve.Curve
	Long       curve.Scalar
	Pub        curve.Point
	Rand       io.Reader
	Log        xlog.Logger
	SessionID  uuid.UUID
}

func (c ReshareConfig) dealerIndex() (Idx, bool) {
	idx, ok := c.OldGroup.Index(c.Pub)
	return idx, ok
}

func (c ReshareConfig) holderIndex() (Idx, bool) {
	idx, ok := c.NewGroup.Index(c.Pub)
	return idx, ok
}

func (c ReshareConfig) logger() xlog.Logger {
	if c.Log == nil {
		return xlog.Noop()
	}
	return c.Log
}

// ReshPhase0 is a resharing participant's state before dealing, if it is a
// dealer (an old-group member).
type ReshPhase0 struct {
	cfg      ReshareConfig
	isDealer bool
	dealerI  Idx
	isHolder bool
	holderI  Idx
	f        *poly.PriPoly
}

// NewReshPhase0 initializes a resharing run. A dealer's secret polynomial
// has its constant term fixed to its previous share (spec §4.6); an old
// member that never ran the previous DKG (PrevShare == nil) cannot deal and
// NewReshPhase0 returns ErrNotDealer for it unless it is present only as a
// new-group holder.
func NewReshPhase0(cfg ReshareConfig) (*ReshPhase0, error) {
	dealerI, isDealer := cfg.dealerIndex()
	holderI, isHolder := cfg.holderIndex()
	if !isDealer && !isHolder {
		return nil, ErrPublicKeyNotFound
	}
	p := &ReshPhase0{cfg: cfg, isDealer: isDealer, dealerI: dealerI, isHolder: isHolder, holderI: holderI}
	if isDealer {
		if cfg.PrevShare == nil {
			return nil, fmt.Errorf("%w: no previous share held for dealer index %d", ErrNotDealer, dealerI)
		}
		p.f = poly.NewPriPoly(cfg.Curve, cfg.NewGroup.Threshold-1, cfg.PrevShare.V, cfg.Rand)
	}
	return p, nil
}

// EncryptShares deals fresh shares of the preserved secret to every
// new-group holder, if this participant is a dealer. Non-dealers pass
// through producing no bundle.
func (p *ReshPhase0) EncryptShares() (*BundledShares, *ReshPhase1, error) {
	next := &ReshPhase1{cfg: p.cfg, isDealer: p.isDealer, dealerI: p.dealerI, isHolder: p.isHolder, holderI: p.holderI, f: p.f}
	if !p.isDealer {
		return nil, next, nil
	}
	public := p.f.Commit(p.cfg.Curve)
	shares := make([]EncryptedShare, 0, p.cfg.NewGroup.Len())
	var errs *multierror.Error
	for _, n := range p.cfg.NewGroup.Nodes {
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
	next.selfPublic = public
	return &BundledShares{SessionID: p.cfg.SessionID, DealerIdx: p.dealerI, Shares: shares, Public: public}, next, nil
}

// ReshPhase1 is a resharing participant's state while awaiting dealer
// bundles.
type ReshPhase1 struct {
	cfg        ReshareConfig
	isDealer   bool
	dealerI    Idx
	isHolder   bool
	holderI    Idx
	f          *poly.PriPoly
	selfPublic *poly.PubPoly
}

// dealerShare pairs a validated share with the dealer that produced it, so
// Phase 2 can restrict interpolation to the smallest sufficient dealer set
// sorted by index (spec §4.6).
type dealerShare struct {
	dealerIdx Idx
	value     curve.Scalar
	public    *poly.PubPoly
}

// ProcessShares decrypts and validates dealt shares, additionally checking
// each dealer's public polynomial against the previous group's public
// polynomial (spec §4.6: F_d(0) == F_prev(dealer+1)). Non-holders pass
// through with no responses. Sufficiency is judged against the *previous*
// group's threshold.
func (p *ReshPhase1) ProcessShares(bundles []*BundledShares, publishAll bool) (*BundledResponses, *ReshPhase2, error) {
	nDealers := p.cfg.OldGroup.Len()
	nHolders := p.cfg.NewGroup.Len()
	matrix := status.New(nDealers, nHolders, status.Complaint)
	if p.isDealer && p.isHolder {
		if err := matrix.Set(int(p.dealerI), int(p.holderI), status.Success); err != nil {
			return nil, nil, err
		}
	}

	// Same gossip convention as the fresh case: a holder only ever reports
	// complaints, so every column but our own defaults to Success.
	for h := 0; h < nHolders; h++ {
		if p.isHolder && Idx(h) == p.holderI {
			continue
		}
		for d := 0; d < nDealers; d++ {
			if err := matrix.Set(d, h, status.Success); err != nil {
				return nil, nil, err
			}
		}
	}

	if !p.isHolder {
		next := &ReshPhase2{cfg: p.cfg, isDealer: p.isDealer, dealerI: p.dealerI, isHolder: false, matrix: matrix}
		return nil, next, nil
	}

	log := p.cfg.logger()
	accepted := make(map[Idx]*dealerShare)
	for _, b := range dedupSharesByDealer(sortBundledShares(bundles)) {
		if int(b.DealerIdx) >= nDealers {
			continue
		}
		if b.Public.Degree() != p.cfg.NewGroup.Threshold-1 {
			log.Warnw("rejecting dealer bundle: wrong degree", "dealer", b.DealerIdx, "degree", b.Public.Degree())
			continue
		}
		if !b.Public.PublicKey().Equal(p.cfg.PrevPublic.Eval(b.DealerIdx).V) {
			log.Warnw("rejecting dealer bundle: inconsistent with previous group public key", "dealer", b.DealerIdx)
			continue
		}
		es, ok := findShareFor(b.Shares, p.holderI)
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
		if !shareCorrect(p.holderI, p.cfg.Curve, s, b.Public) {
			log.Warnw("rejecting dealer share: inconsistent with commitment", "dealer", b.DealerIdx)
			continue
		}
		if err := matrix.Set(int(b.DealerIdx), int(p.holderI), status.Success); err != nil {
			continue
		}
		accepted[b.DealerIdx] = &dealerShare{dealerIdx: b.DealerIdx, value: s, public: b.Public}
	}

	if need := p.cfg.OldGroup.Threshold; len(accepted) < need {
		return nil, nil, fmt.Errorf("%w: got %d, need %d", ErrNotEnoughValidShares, len(accepted), need)
	}

	var responses []Response
	for d := 0; d < nDealers; d++ {
		st, err := matrix.Get(d, int(p.holderI))
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
		bundle = &BundledResponses{ShareIdx: p.holderI, Responses: responses}
	}

	next := &ReshPhase2{
		cfg:      p.cfg,
		isDealer: p.isDealer,
		dealerI:  p.dealerI,
		isHolder: true,
		holderI:  p.holderI,
		f:        p.f,
		accepted: accepted,
		matrix:   matrix,
	}
	return bundle, next, nil
}

// ReshPhase2 is a resharing participant's state while awaiting responses.
type ReshPhase2 struct {
	cfg      ReshareConfig
	isDealer bool
	dealerI  Idx
	isHolder bool
	holderI  Idx
	f        *poly.PriPoly
	accepted map[Idx]*dealerShare
	matrix   *status.Matrix
}

// ProcessResponses applies peer responses and, for holders, attempts to
// assemble the new share and public polynomial from the smallest
// sufficient dealer set. Only dealers produce justifications (spec §4.6);
// a dealer who is not a holder still answers complaints but never produces
// an output.
func (p *ReshPhase2) ProcessResponses(responses []*BundledResponses) (*DKGOutput, *BundledJustification, *ReshPhase3, error) {
	for _, b := range sortBundledResponses(responses) {
		for _, r := range b.Responses {
			if int(r.DealerIdx) >= p.cfg.OldGroup.Len() {
				continue
			}
			if err := p.matrix.Set(int(r.DealerIdx), int(b.ShareIdx), r.Status); err != nil {
				return nil, nil, nil, err
			}
		}
	}

	var bundle *BundledJustification
	if p.isDealer {
		row, err := p.matrix.Row(int(p.dealerI))
		if err != nil {
			return nil, nil, nil, err
		}
		var justifs []Justification
		for h, st := range row {
			if st == status.Complaint && p.f != nil {
				justifs = append(justifs, Justification{ShareIdx: Idx(h), Share: p.f.Eval(Idx(h)).V})
			}
		}
		if len(justifs) > 0 {
			pub := p.f.Commit(p.cfg.Curve)
			bundle = &BundledJustification{DealerIdx: p.dealerI, Justifications: justifs, Public: pub}
		}
	}

	if !p.isHolder {
		// Non-holders (dealer-only old members) have nothing left to do:
		// they've answered any complaints above, and produce no output.
		return nil, bundle, nil, nil
	}

	next := &ReshPhase3{
		cfg:      p.cfg,
		isHolder: p.isHolder,
		holderI:  p.holderI,
		accepted: p.accepted,
		matrix:   p.matrix,
	}

	out, err := next.tryFinalize()
	if err == nil {
		return out, bundle, nil, nil
	}
	return nil, bundle, next, nil
}

// ReshPhase3 is a resharing holder's state while awaiting justifications
// for dealers it initially rejected.
type ReshPhase3 struct {
	cfg      ReshareConfig
	isHolder bool
	holderI  Idx
	accepted map[Idx]*dealerShare
	matrix   *status.Matrix
}

// tryFinalize attempts to gather the previous group's threshold worth of
// accepted dealer shares, sorted by dealer index, and interpolate the new
// share and public polynomial from them (spec §4.6).
func (p *ReshPhase3) tryFinalize() (*DKGOutput, error) {
	need := p.cfg.OldGroup.Threshold
	if len(p.accepted) < need {
		return nil, ErrInvalidRecovery
	}
	ordered := make([]Idx, 0, len(p.accepted))
	for d := range p.accepted {
		ordered = append(ordered, d)
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j-1] > ordered[j]; j-- {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}
	chosen := ordered[:need]

	shares := make([]*poly.PriShare, need)
	for i, d := range chosen {
		shares[i] = &poly.PriShare{I: d, V: p.accepted[d].value}
	}
	newShareVal, err := poly.Recover(p.cfg.Curve, need, shares)
	if err != nil {
		return nil, err
	}

	newT := p.cfg.NewGroup.Threshold
	coeffs := make([]curve.Point, newT)
	for c := 0; c < newT; c++ {
		ptShares := make([]*poly.PubShare, need)
		for i, d := range chosen {
			ptShares[i] = &poly.PubShare{I: d, V: p.accepted[d].public.Commitments()[c]}
		}
		pt, err := poly.RecoverCommit(p.cfg.Curve, need, ptShares)
		if err != nil {
			return nil, err
		}
		coeffs[c] = pt
	}
	newPublic := poly.NewPubPoly(p.cfg.Curve, coeffs)

	qualNodes := make([]*party.Node, 0, p.cfg.NewGroup.Len())
	for _, n := range p.cfg.NewGroup.Nodes {
		allGood := true
		for _, d := range chosen {
			st, err := p.matrix.Get(int(d), int(n.Index))
			if err != nil || st != status.Success {
				allGood = false
				break
			}
		}
		if allGood {
			qualNodes = append(qualNodes, n)
		}
	}
	qualGroup, err := party.NewGroup(qualNodes, newT)
	if err != nil {
		return nil, err
	}

	return &DKGOutput{
		QUAL:   qualGroup,
		Public: newPublic,
		Share:  &poly.PriShare{I: p.holderI, V: newShareVal},
	}, nil
}

// ProcessJustifications incorporates revealed shares from dealers this
// holder initially rejected, then retries finalization.
func (p *ReshPhase3) ProcessJustifications(justifs []*BundledJustification) (*DKGOutput, error) {
	if !p.isHolder {
		return nil, ErrNotShareHolder
	}
	for _, b := range dedupJustifsByDealer(sortBundledJustifications(justifs)) {
		for _, j := range b.Justifications {
			if j.ShareIdx != p.holderI {
				continue
			}
			if !shareCorrect(p.holderI, p.cfg.Curve, j.Share, b.Public) {
				continue
			}
			if err := p.matrix.Set(int(b.DealerIdx), int(p.holderI), status.Success); err != nil {
				return nil, err
			}
			p.accepted[b.DealerIdx] = &dealerShare{dealerIdx: b.DealerIdx, value: j.Share, public: b.Public}
		}
	}
	out, err := p.tryFinalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEnoughJustifications, err)
	}
	return out, nil
}
