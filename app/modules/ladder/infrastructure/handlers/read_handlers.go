package ladderhandlers

import (
	"net/http"
	"strconv"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
)

// HandleExists answers GET /{ladder}/exists with a bare boolean.
func (h *LadderHandlers) HandleExists(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Exists")
	defer span.End()

	exists, err := h.service.LadderExists(ctx, pathParam(r, "ladder"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exists)
}

func (h *LadderHandlers) HandleMatchShape(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "MatchShape")
	defer span.End()

	shape, err := h.service.MatchShape(ctx, pathParam(r, "ladder"))
	switch {
	case readMissing(err):
		writeJSON(w, http.StatusOK, matchShapeResponse{})
	case err != nil:
		h.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, matchShapeResponse{Exists: true, Shape: shape})
	}
}

// HandleSettings returns the ladder's rating parameters and tracked shape.
func (h *LadderHandlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Settings")
	defer span.End()

	ladder, err := h.service.GetLadder(ctx, pathParam(r, "ladder"))
	switch {
	case readMissing(err):
		writeJSON(w, http.StatusOK, settingsResponse{})
	case err != nil:
		h.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, newSettingsResponse(ladder))
	}
}

func (h *LadderHandlers) HandleRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Ranking")
	defer span.End()

	standings, err := h.service.Ranking(ctx, pathParam(r, "ladder"))
	switch {
	case readMissing(err):
		writeJSON(w, http.StatusOK, rankingResponse{Ranking: []ladderdomain.Standing{}})
	case err != nil:
		h.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, rankingResponse{Exists: true, Ranking: standings})
	}
}

// HandleMatches serves a page of matches, newest first. The optional {limit}
// and {offset} path segments page through the ledger; a token in the body
// sets "owned" so the UI can offer removal.
func (h *LadderHandlers) HandleMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Matches")
	defer span.End()

	q := ladderdomain.MatchQuery{NewestFirst: true}
	var err error
	if q.Limit, err = intParam(r, "limit"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.Offset, err = intParam(r, "offset"); err != nil {
		h.writeError(w, r, err)
		return
	}

	var req tokenRequest
	if r.Method == http.MethodPost {
		if err := decodeBody(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	name := pathParam(r, "ladder")
	matches, err := h.service.ListMatches(ctx, name, q)
	switch {
	case readMissing(err):
		writeJSON(w, http.StatusOK, matchesResponse{Matches: []matchView{}})
		return
	case err != nil:
		h.writeError(w, r, err)
		return
	}

	owned := false
	if identity := h.identity(ctx, r, req.IDToken); identity != "" {
		if owned, err = h.service.IsOwner(ctx, name, identity); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	views := make([]matchView, len(matches))
	for i, m := range matches {
		views[i] = newMatchView(m)
	}
	writeJSON(w, http.StatusOK, matchesResponse{Exists: true, Owned: owned, Matches: views})
}

func (h *LadderHandlers) HandleSuggestPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "SuggestPlayers")
	defer span.End()

	names, err := h.service.Suggest(ctx, pathParam(r, "ladder"), pathParam(r, "prefix"))
	switch {
	case readMissing(err):
		writeJSON(w, http.StatusOK, suggestResponse{Names: []string{}})
	case err != nil:
		h.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, suggestResponse{Exists: true, Names: names})
	}
}

// HandleHistory returns [unix_seconds, skill] pairs, oldest first. Unknown
// ladders and players both yield an empty array.
func (h *LadderHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "History")
	defer span.End()

	entries, err := h.service.History(ctx, pathParam(r, "ladder"), pathParam(r, "player"))
	if err != nil && !readMissing(err) {
		h.writeError(w, r, err)
		return
	}

	pairs := make([][2]float64, len(entries))
	for i, e := range entries {
		pairs[i] = [2]float64{float64(e.PlayedAt.Unix()), e.Skill()}
	}
	writeJSON(w, http.StatusOK, pairs)
}

func (h *LadderHandlers) HandleHistoryChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "HistoryChart")
	defer span.End()

	player := pathParam(r, "player")
	png, err := h.service.HistoryChart(ctx, pathParam(r, "ladder"), player)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (h *LadderHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Export")
	defer span.End()

	name := pathParam(r, "ladder")
	body, err := h.service.ExportWorkbook(ctx, name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name+".xlsx", body)
}

// intParam parses an optional non-negative integer path segment.
func intParam(r *http.Request, key string) (int, error) {
	raw := pathParam(r, key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ladderdomain.Invalid(key, "must be a non-negative integer")
	}
	return n, nil
}
