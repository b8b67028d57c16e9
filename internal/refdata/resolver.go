// Package refdata resolves free-text traveler fields into the opaque
// reference codes the remote service expects. Codes are not stable
// constants, so every category is resolved per session against live
// server lists, with the small gotoAdd option lists serving the seeded
// categories. Resolved rows live only in the submission's SessionState;
// nothing resolved here outlives the attempt, which is what keeps one
// traveler's codes from ever leaking into another's submission.
package refdata

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"arrivalcard/internal/logging"
	"arrivalcard/internal/session"
	"arrivalcard/internal/types"
)

// LookupClient is the slice of the protocol client the resolver needs.
type LookupClient interface {
	SelectList(ctx context.Context, bearer string, cat types.Category, search, parentKey string) ([]types.ReferenceRow, error)
}

// Resolver matches traveler input to ReferenceRows and records the
// outcome in the session state.
type Resolver struct {
	client LookupClient
	log    *zap.Logger
	audit  logging.AuditLogger
}

// NewResolver builds a resolver. audit may be nil; mapping records are
// then dropped.
func NewResolver(client LookupClient, log *zap.Logger, audit logging.AuditLogger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if audit == nil {
		audit = logging.NopAudit()
	}
	return &Resolver{client: client, log: log, audit: audit}
}

// ResolveAll resolves every category the submission payload needs and
// stores the chosen rows in st. Seeded categories are satisfied from the
// gotoAdd cache without network traffic; the mutually independent live
// categories are fetched concurrently and joined before return, so the
// payload builder never runs against partial state.
//
// The departure leg deliberately has no lookup of its own: transport
// vocabulary is shared per session, and the builder reads the one
// session-resolved transport row for both legs. Caller-supplied IDs are
// never consulted for that field.
func (r *Resolver) ResolveAll(ctx context.Context, req *types.TravelerRequest, st *session.State) error {
	seeded := []struct {
		cat   types.Category
		input string
	}{
		{types.CategoryGender, req.Gender},
		{types.CategoryTravelMode, req.TravelMode},
		{types.CategoryAccommodationType, req.AccommodationType},
		{types.CategoryPurpose, req.Purpose},
	}
	for _, s := range seeded {
		row, err := r.resolveSeeded(st, s.cat, s.input)
		if err != nil {
			return err
		}
		st.Resolve(s.cat, row)
		r.audit.ResolvedMapping(st.SubmissionID, s.cat, s.input, row)
	}

	// Hotels carry no district/sub-district on the remote form; their
	// absence is not a resolution failure.
	hotel := false
	if row, ok := st.ResolvedRow(types.CategoryAccommodationType); ok {
		hotel = row.IsHotel()
	}

	live := []struct {
		cat   types.Category
		input string
	}{
		{types.CategoryNationality, req.Nationality},
		{types.CategoryCountry, req.CountryOfBoarding},
		{types.CategoryStateOfResidence, req.StateOfResidence},
		{types.CategoryProvince, req.Province},
		{types.CategoryTransportMode, req.TransportMode},
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range live {
		l := l
		g.Go(func() error {
			return r.resolveLive(gctx, st, l.cat, l.input, "")
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if hotel {
		r.log.Debug("hotel accommodation, skipping district and sub-district resolution",
			zap.String("submission_id", st.SubmissionID))
		return nil
	}

	// District and sub-district are parent-scoped, so they run after the
	// province join, in order.
	province, _ := st.ResolvedRow(types.CategoryProvince)
	if err := r.resolveLive(ctx, st, types.CategoryDistrict, req.District, province.Key); err != nil {
		return err
	}
	district, _ := st.ResolvedRow(types.CategoryDistrict)
	return r.resolveLive(ctx, st, types.CategorySubDistrict, req.SubDistrict, district.Key)
}

// resolveSeeded satisfies a category from the gotoAdd session cache,
// falling back to the static table only when the cache has no list for
// the category at all.
func (r *Resolver) resolveSeeded(st *session.State, cat types.Category, input string) (types.ReferenceRow, error) {
	rows := st.SeedList(cat)
	if len(rows) == 0 {
		rows = staticFallbacks[cat]
		r.log.Warn("session cache missing option list, using static fallback table",
			zap.String("submission_id", st.SubmissionID),
			zap.String("category", string(cat)))
	}
	row, ok := match(rows, input)
	if !ok {
		if fallbackAllowed[cat] && len(rows) > 0 {
			r.log.Warn("no match for input, falling back to first option",
				zap.String("category", string(cat)),
				zap.String("input", input))
			return rows[0], nil
		}
		return types.ReferenceRow{}, &types.ResolutionError{Category: cat, Input: input}
	}
	return row, nil
}

// resolveLive fetches candidates for one category and selects a row.
// Transport and client errors propagate unwrapped so the classifier sees
// them as network/timeout failures, not resolution failures.
func (r *Resolver) resolveLive(ctx context.Context, st *session.State, cat types.Category, input, parentKey string) error {
	rows, err := r.client.SelectList(ctx, st.ActionToken, cat, searchTerm(input), parentKey)
	if err != nil {
		return err
	}
	row, ok := match(rows, input)
	if !ok {
		if fallbackAllowed[cat] && len(rows) > 0 {
			r.log.Warn("no match for input, falling back to first server row",
				zap.String("category", string(cat)),
				zap.String("input", input))
			row = rows[0]
		} else {
			return &types.ResolutionError{Category: cat, Input: input}
		}
	}
	st.Resolve(cat, row)
	r.audit.ResolvedMapping(st.SubmissionID, cat, input, row)
	return nil
}

// match applies the selection policy in order, first hit wins:
// exact key, exact code, simplified display equality, then substring
// containment of the input within the display value. Rows are scanned in
// server order at each stage, so identical inputs against identical
// lists always pick the same row.
func match(rows []types.ReferenceRow, input string) (types.ReferenceRow, bool) {
	norm := normalize(input)
	simple := simplify(input)
	if norm == "" {
		return types.ReferenceRow{}, false
	}

	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row.Key), strings.TrimSpace(input)) {
			return row, true
		}
	}
	for _, row := range rows {
		if row.Code != "" && strings.EqualFold(row.Code, strings.TrimSpace(input)) {
			return row, true
		}
	}
	for _, row := range rows {
		if simplify(row.Value) == simple {
			return row, true
		}
	}
	for _, row := range rows {
		if strings.Contains(normalize(row.Value), norm) {
			return row, true
		}
	}
	return types.ReferenceRow{}, false
}
